package api

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"smartbudget/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExpenseRouter(t *testing.T, userID uint) (*gin.Engine, sqlmock.Sqlmock, func()) {
	db, mock, cleanup := setupMockDB(t)
	ledger := service.NewLedger(db)
	h := NewExpenseHandler(service.NewExpenseService(db, service.NewBudgetService(db, ledger), ledger))

	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	router.POST("/expenses", h.Create)
	router.GET("/expenses", h.List)
	router.GET("/expenses/categories", h.GetCategories)
	router.GET("/expenses/statistics", h.GetStatistics)
	router.GET("/expenses/:id", h.Get)
	router.PUT("/expenses/:id", h.Update)
	router.DELETE("/expenses/:id", h.Delete)
	return router, mock, cleanup
}

func TestExpenseHandler_Create(t *testing.T) {
	router, mock, cleanup := newExpenseRouter(t, 1)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expenses`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	expectBudgetFound(mock, 1, 0)
	expectRecompute(mock, 1, 250.5)

	w := doRequest(router, "POST", "/expenses", `{"description":"Groceries","amount":250.50,"category":"Food","date":"2024-01-15"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]interface{})
	expense := data["expense"].(map[string]interface{})
	budget := data["budget"].(map[string]interface{})
	assert.Equal(t, "Groceries", expense["description"])
	assert.Equal(t, 250.5, budget["total_spent"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Create_MissingAmount(t *testing.T) {
	router, mock, cleanup := newExpenseRouter(t, 1)
	defer cleanup()

	w := doRequest(router, "POST", "/expenses", `{"description":"Groceries","category":"Food"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeResponse(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "amount is required", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Create_InvalidInput(t *testing.T) {
	router, mock, cleanup := newExpenseRouter(t, 1)
	defer cleanup()

	tests := []struct {
		name string
		body string
	}{
		{"zero amount", `{"amount":0}`},
		{"negative amount", `{"amount":-5}`},
		{"amount as text", `{"amount":"abc"}`},
		{"bad date", `{"amount":5,"date":"15/01/2024"}`},
		{"not json", `amount=5`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "POST", "/expenses", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_List(t *testing.T) {
	router, mock, cleanup := newExpenseRouter(t, 1)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `expenses` WHERE user_id = \\? ORDER BY expense_time DESC, id DESC LIMIT 100").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows(expenseColumns).
			AddRow(2, 1, "Gas", 45, "Transportation", now, now, now))

	w := doRequest(router, "GET", "/expenses?limit=500", "")
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(100), data["limit"])
	assert.Equal(t, float64(0), data["offset"])
	assert.Len(t, data["expenses"], 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Get_NotFound(t *testing.T) {
	router, mock, cleanup := newExpenseRouter(t, 2)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `expenses`").
		WithArgs(uint(5), uint(2)).
		WillReturnRows(sqlmock.NewRows(expenseColumns))

	w := doRequest(router, "GET", "/expenses/5", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "expense not found or unauthorized", decodeResponse(t, w)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Get_InvalidID(t *testing.T) {
	router, mock, cleanup := newExpenseRouter(t, 1)
	defer cleanup()

	w := doRequest(router, "GET", "/expenses/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Update(t *testing.T) {
	router, mock, cleanup := newExpenseRouter(t, 1)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `expenses`").
		WithArgs(uint(2), uint(1)).
		WillReturnRows(sqlmock.NewRows(expenseColumns).AddRow(2, 1, "Gas", 45, "Transportation", now, now, now))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `expenses` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectBudgetFound(mock, 1, 1000)
	expectRecompute(mock, 1, 310.5)

	w := doRequest(router, "PUT", "/expenses/2", `{"description":"Gas","amount":60,"category":"Transportation"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 60.0, data["expense"].(map[string]interface{})["amount"])
	assert.Equal(t, 310.5, data["budget"].(map[string]interface{})["total_spent"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Delete_OtherUser(t *testing.T) {
	router, mock, cleanup := newExpenseRouter(t, 2)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `expenses`").
		WithArgs(uint(2), uint(2)).
		WillReturnRows(sqlmock.NewRows(expenseColumns))

	w := doRequest(router, "DELETE", "/expenses/2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_GetCategories(t *testing.T) {
	router, _, cleanup := newExpenseRouter(t, 1)
	defer cleanup()

	w := doRequest(router, "GET", "/expenses/categories", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Other"`)
}

func TestExpenseHandler_GetStatistics(t *testing.T) {
	router, mock, cleanup := newExpenseRouter(t, 1)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(NULLIF(category, ''), 'Other') AS category")).
		WithArgs(uint(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"category", "total", "count"}).
			AddRow("Food", 250.5, 1).
			AddRow("Transportation", 45, 1))

	w := doRequest(router, "GET", "/expenses/statistics?range_type=month&year_month=2024-01", "")
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "month", data["range_type"])
	assert.Equal(t, 295.5, data["total_amount"])
	assert.Equal(t, "2024-01-01 00:00:00", data["start_time"])
	assert.Equal(t, "2024-01-31 23:59:59", data["end_time"])
	assert.Len(t, data["category_stats"], 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_GetStatistics_BadRange(t *testing.T) {
	router, mock, cleanup := newExpenseRouter(t, 1)
	defer cleanup()

	for _, q := range []string{"range_type=week", "range_type=year&year=99", "range_type=custom&start_time=2024-02-01&end_time=2024-01-01"} {
		w := doRequest(router, "GET", "/expenses/statistics?"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
