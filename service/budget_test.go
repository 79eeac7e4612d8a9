package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBudgetService(t *testing.T) (*BudgetService, sqlmock.Sqlmock, func()) {
	db, mock, cleanup := setupMockDB(t)
	return NewBudgetService(db, NewLedger(db)), mock, cleanup
}

func TestBudgetService_GetOrCreate_Existing(t *testing.T) {
	s, mock, cleanup := newTestBudgetService(t)
	defer cleanup()

	expectBudgetFound(mock, 4, 1, 1000, 250.5)

	budget, err := s.GetOrCreate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint(4), budget.ID)
	assert.Equal(t, 1000.0, budget.MonthlyBudget)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetService_GetOrCreate_Creates(t *testing.T) {
	s, mock, cleanup := newTestBudgetService(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `budgets`").
		WithArgs(uint(9)).
		WillReturnRows(sqlmock.NewRows(budgetColumns))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `budgets`").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	budget, err := s.GetOrCreate(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, uint(12), budget.ID)
	assert.Equal(t, uint(9), budget.UserID)
	assert.Zero(t, budget.MonthlyBudget)
	assert.Zero(t, budget.TotalSpent)
	assert.Zero(t, budget.TotalSaved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetService_GetOrCreate_LostRace(t *testing.T) {
	s, mock, cleanup := newTestBudgetService(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `budgets`").
		WithArgs(uint(9)).
		WillReturnRows(sqlmock.NewRows(budgetColumns))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `budgets`").
		WillReturnError(errors.New("Error 1062: Duplicate entry '9' for key 'budgets.user_id'"))
	mock.ExpectRollback()
	expectBudgetFound(mock, 5, 9, 0, 0)

	budget, err := s.GetOrCreate(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, uint(5), budget.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetService_GetOrCreate_MissingUser(t *testing.T) {
	s, mock, cleanup := newTestBudgetService(t)
	defer cleanup()

	_, err := s.GetOrCreate(context.Background(), 0)
	assert.Equal(t, KindInvalidInput, KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetService_Snapshot(t *testing.T) {
	s, mock, cleanup := newTestBudgetService(t)
	defer cleanup()

	// 库中 total_spent 已漂移，返回前必须重算
	expectBudgetFound(mock, 1, 3, 500, 999)
	expectRecompute(mock, 3, 120.75)

	budget, err := s.Snapshot(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 120.75, budget.TotalSpent)
	assert.Equal(t, 379.25, budget.Remaining())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetService_SetMonthlyAllocation(t *testing.T) {
	s, mock, cleanup := newTestBudgetService(t)
	defer cleanup()

	expectBudgetFound(mock, 1, 3, 0, 0)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `budgets` SET `monthly_budget`").
		WithArgs(1000.0, sqlmock.AnyArg(), uint(3), uint(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectRecompute(mock, 3, 295.5)

	budget, err := s.SetMonthlyAllocation(context.Background(), 3, float(1000))
	require.NoError(t, err)
	assert.Equal(t, 1000.0, budget.MonthlyBudget)
	assert.Equal(t, 295.5, budget.TotalSpent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetService_SetMonthlyAllocation_Zero(t *testing.T) {
	s, mock, cleanup := newTestBudgetService(t)
	defer cleanup()

	expectBudgetFound(mock, 1, 3, 500, 0)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `budgets` SET `monthly_budget`").
		WithArgs(0.0, sqlmock.AnyArg(), uint(3), uint(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectRecompute(mock, 3, 0)

	budget, err := s.SetMonthlyAllocation(context.Background(), 3, float(0))
	require.NoError(t, err)
	assert.Zero(t, budget.MonthlyBudget)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetService_SetMonthlyAllocation_Invalid(t *testing.T) {
	s, mock, cleanup := newTestBudgetService(t)
	defer cleanup()

	tests := []struct {
		name   string
		amount *float64
	}{
		{"missing", nil},
		{"negative", float(-1)},
		{"too large", float(MaxAmount + 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SetMonthlyAllocation(context.Background(), 3, tt.amount)
			assert.Equal(t, KindInvalidInput, KindOf(err))
		})
	}
	// 校验失败不访问数据库
	require.NoError(t, mock.ExpectationsWereMet())
}
