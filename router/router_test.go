package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"smartbudget/config"
	"smartbudget/middleware"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode},
		JWT:       config.JWTConfig{Secret: "router-test-secret", ExpireTime: time.Hour},
		RateLimit: config.RateLimitConfig{LoginAttempts: 100, Window: time.Minute},
	}
}

func setupRouter(t *testing.T, monitorPings bool) (*gin.Engine, sqlmock.Sqlmock, func()) {
	return setupRouterWithConfig(t, testConfig(), monitorPings)
}

func setupRouterWithConfig(t *testing.T, cfg *config.Config, monitorPings bool) (*gin.Engine, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(monitorPings))
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	middleware.InitJWT(cfg)
	return SetupRouter(cfg, db, NewServices(cfg, db)), mock, func() { sqlDB.Close() }
}

func authed(t *testing.T, router *gin.Engine, userID uint, method, path, body string) *httptest.ResponseRecorder {
	token, err := middleware.GenerateToken(userID, fmt.Sprintf("user%d@example.com", userID), time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func data(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, true, resp["success"], w.Body.String())
	return resp["data"].(map[string]interface{})
}

var budgetColumns = []string{"id", "user_id", "monthly_budget", "total_spent", "total_saved", "created_at", "updated_at"}

func expectBudget(mock sqlmock.Sqlmock, userID uint, monthly float64) {
	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `budgets`").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(budgetColumns).AddRow(1, userID, monthly, 0, 0, now, now))
}

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

func totalSpent(t *testing.T, w *httptest.ResponseRecorder) float64 {
	return data(t, w)["budget"].(map[string]interface{})["total_spent"].(float64)
}

// 新增 250.50、45.00，设预算 1000，再删除 45.00：每一步返回的 total_spent 都是当前记录之和
func TestExpenseLifecycle(t *testing.T) {
	router, mock, cleanup := setupRouter(t, false)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expenses`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	expectBudget(mock, 1, 0)
	expectRecompute(mock, 1, 250.5)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expenses`").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()
	expectBudget(mock, 1, 0)
	expectRecompute(mock, 1, 295.5)

	expectBudget(mock, 1, 0)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `budgets` SET `monthly_budget`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectRecompute(mock, 1, 295.5)

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `expenses`").
		WithArgs(uint(2), uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "description", "amount", "category", "expense_time", "created_at", "updated_at"}).
			AddRow(2, 1, "Gas", 45, "Transportation", now, now, now))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `expenses`").WithArgs(uint(2), uint(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectBudget(mock, 1, 1000)
	expectRecompute(mock, 1, 250.5)

	w := authed(t, router, 1, "POST", "/api/v1/expenses", `{"description":"Groceries","amount":250.50,"category":"Food"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 250.5, totalSpent(t, w))

	w = authed(t, router, 1, "POST", "/api/v1/expenses", `{"description":"Gas","amount":45,"category":"Transportation"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 295.5, totalSpent(t, w))

	w = authed(t, router, 1, "PUT", "/api/v1/budget", `{"monthly_budget":1000}`)
	require.Equal(t, http.StatusOK, w.Code)
	d := data(t, w)
	assert.Equal(t, 704.5, d["remaining"])

	w = authed(t, router, 1, "DELETE", "/api/v1/expenses/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 250.5, totalSpent(t, w))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMethodNotAllowed(t *testing.T) {
	router, mock, cleanup := setupRouter(t, false)
	defer cleanup()

	w := authed(t, router, 1, "PATCH", "/api/v1/expenses", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNoRoute(t *testing.T) {
	router, _, cleanup := setupRouter(t, false)
	defer cleanup()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/nothing-here", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestRequiresToken(t *testing.T) {
	router, mock, cleanup := setupRouter(t, false)
	defer cleanup()

	for _, path := range []string{"/api/v1/dashboard", "/api/v1/expenses", "/api/v1/goals", "/api/v1/export/csv"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestIDEchoed(t *testing.T) {
	router, _, cleanup := setupRouter(t, false)
	defer cleanup()

	req := httptest.NewRequest("GET", "/api/v1/dashboard", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestHealth(t *testing.T) {
	router, mock, cleanup := setupRouter(t, true)
	defer cleanup()

	mock.ExpectPing()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	mock.ExpectPing().WillReturnError(fmt.Errorf("gone"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSwaggerDoc(t *testing.T) {
	router, _, cleanup := setupRouter(t, false)
	defer cleanup()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/v1/expenses")
}

func loginFrom(router *gin.Engine, forwardedFor string) int {
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	req.RemoteAddr = "192.0.2.1:40000"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

// 未配置可信代理时，伪造 X-Forwarded-For 不能绕过登录限流
func TestAuthRateLimitIgnoresForwardedFor(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.LoginAttempts = 3
	router, mock, cleanup := setupRouterWithConfig(t, cfg, false)
	defer cleanup()

	codes := map[int]int{}
	for i := 0; i < 6; i++ {
		codes[loginFrom(router, fmt.Sprintf("198.51.100.%d", i))]++
	}
	assert.Equal(t, map[int]int{http.StatusBadRequest: 3, http.StatusTooManyRequests: 3}, codes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthRateLimitTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.LoginAttempts = 3
	cfg.Server.TrustedProxies = []string{"192.0.2.1"}
	router, _, cleanup := setupRouterWithConfig(t, cfg, false)
	defer cleanup()

	// 经可信代理转发时按真实客户端地址计数
	for i := 0; i < 6; i++ {
		assert.Equal(t, http.StatusBadRequest, loginFrom(router, fmt.Sprintf("198.51.100.%d", i)))
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.String(200, "ok") })

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("OPTIONS", "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestCORSMiddleware_AllowAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(nil))
	r.GET("/x", func(c *gin.Context) { c.String(200, "ok") })

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "https://any.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}
