package service

import (
	"regexp"
	"testing"
	"time"

	"smartbudget/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock, func() {
		sqlDB.Close()
	}
}

var budgetColumns = []string{"id", "user_id", "monthly_budget", "total_spent", "total_saved", "created_at", "updated_at"}

func budgetRow(id, userID uint, monthly, spent float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(budgetColumns).AddRow(id, userID, monthly, spent, 0, now, now)
}

var expenseColumns = []string{"id", "user_id", "description", "amount", "category", "expense_time", "created_at", "updated_at"}

func expenseRows() *sqlmock.Rows {
	return sqlmock.NewRows(expenseColumns)
}

var goalColumns = []string{"id", "user_id", "goal_name", "target_amount", "current_amount", "created_at", "updated_at"}

func goalRows() *sqlmock.Rows {
	return sqlmock.NewRows(goalColumns)
}

// expectBudgetFound 预算行已存在
func expectBudgetFound(mock sqlmock.Sqlmock, id, userID uint, monthly, spent float64) {
	mock.ExpectQuery("SELECT \\* FROM `budgets`").
		WithArgs(userID).
		WillReturnRows(budgetRow(id, userID, monthly, spent))
}

// expectRecompute 重算 SUM 并回写 total_spent
func expectRecompute(mock sqlmock.Sqlmock, userID uint, sum float64) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0) FROM `expenses`")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(sum))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `budgets` SET `total_spent`").
		WithArgs(sum, sqlmock.AnyArg(), userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func float(v float64) *float64 {
	return &v
}

func budgetFixture(userID uint, monthly, spent float64) *models.Budget {
	return &models.Budget{ID: 1, UserID: userID, MonthlyBudget: monthly, TotalSpent: spent}
}
