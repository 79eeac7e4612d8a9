package router

import (
	"context"
	"net/http"
	"slices"
	"time"

	"smartbudget/api"
	"smartbudget/config"
	"smartbudget/database"
	_ "smartbudget/docs"
	"smartbudget/logging"
	"smartbudget/middleware"
	"smartbudget/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Services 路由依赖的业务服务
type Services struct {
	Users     *service.UserService
	Budgets   *service.BudgetService
	Expenses  *service.ExpenseService
	Goals     *service.GoalService
	Dashboard *service.DashboardService
	Email     *service.EmailService
}

// NewServices 基于同一个连接池构建全部服务
func NewServices(cfg *config.Config, db *gorm.DB) *Services {
	ledger := service.NewLedger(db)
	budgets := service.NewBudgetService(db, ledger)
	expenses := service.NewExpenseService(db, budgets, ledger)
	goals := service.NewGoalService(db)
	return &Services{
		Users:     service.NewUserService(db),
		Budgets:   budgets,
		Expenses:  expenses,
		Goals:     goals,
		Dashboard: service.NewDashboardService(budgets, expenses, goals),
		Email:     service.NewEmailService(&cfg.Email),
	}
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, db *gorm.DB, svc *Services) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	// 未配置时不信任任何代理，限流按连接地址计数
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logging.Logger.WithError(err).Warn("invalid trusted proxies, ignoring forwarded headers")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(logging.Logger))
	r.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	r.NoRoute(func(c *gin.Context) {
		api.NotFound(c, "route not found")
	})
	r.NoMethod(api.MethodNotAllowed)

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.Ping(ctx, db); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := api.NewAuthHandler(cfg, svc.Users)
	budgetHandler := api.NewBudgetHandler(svc.Budgets, svc.Dashboard)
	expenseHandler := api.NewExpenseHandler(svc.Expenses)
	goalHandler := api.NewGoalHandler(svc.Goals)
	exportHandler := api.NewExportHandler(svc.Expenses, svc.Users, svc.Email)

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录），按 IP 限流
		auth := v1.Group("/auth")
		limited := auth.Group("")
		limited.Use(middleware.AuthRateLimit(cfg.RateLimit.LoginAttempts, cfg.RateLimit.Window))
		{
			limited.POST("/signup", authHandler.Signup)
			limited.POST("/login", authHandler.Login)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.Profile)

			authorized.GET("/dashboard", budgetHandler.Dashboard)
			authorized.GET("/budget", budgetHandler.Get)
			authorized.PUT("/budget", budgetHandler.Set)

			expenses := authorized.Group("/expenses")
			{
				expenses.POST("", expenseHandler.Create)
				expenses.GET("", expenseHandler.List)
				expenses.GET("/categories", expenseHandler.GetCategories)
				expenses.GET("/statistics", expenseHandler.GetStatistics)
				expenses.GET("/:id", expenseHandler.Get)
				expenses.PUT("/:id", expenseHandler.Update)
				expenses.DELETE("/:id", expenseHandler.Delete)
			}

			goals := authorized.Group("/goals")
			{
				goals.POST("", goalHandler.Create)
				goals.GET("", goalHandler.List)
				goals.GET("/:id", goalHandler.Get)
				goals.PUT("/:id", goalHandler.Update)
				goals.PUT("/:id/progress", goalHandler.UpdateProgress)
				goals.DELETE("/:id", goalHandler.Delete)
			}

			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/excel", exportHandler.ExportExcel)
				export.POST("/email", exportHandler.SendEmail)
			}
		}
	}

	return r
}

// CORSMiddleware CORS 跨域中间件，allowed 为空或包含 * 时放行所有来源（不带凭证）
func CORSMiddleware(allowed []string) gin.HandlerFunc {
	allowAll := len(allowed) == 0 || slices.Contains(allowed, "*")
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Accept", "Cache-Control", "X-Requested-With", logging.RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", logging.RequestIDHeader},
	}
	if allowAll {
		opts.AllowedOrigins = []string{"*"}
	} else {
		opts.AllowedOrigins = allowed
		opts.AllowCredentials = true
	}
	c := cors.New(opts)

	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)
		// 预检请求已由 cors 写回状态码
		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
