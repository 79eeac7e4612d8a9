package api

import (
	"smartbudget/middleware"
	"smartbudget/service"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算与首页处理器
type BudgetHandler struct {
	budgets   *service.BudgetService
	dashboard *service.DashboardService
}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler(budgets *service.BudgetService, dashboard *service.DashboardService) *BudgetHandler {
	return &BudgetHandler{budgets: budgets, dashboard: dashboard}
}

// SetBudgetRequest 设置月度预算请求
type SetBudgetRequest struct {
	MonthlyBudget *float64 `json:"monthly_budget" binding:"required,gte=0,lte=9999999999.99" example:"1000"`
}

// Dashboard 首页数据
// @Summary 首页数据
// @Description 返回预算（已重算消费总额）、最近 6 笔消费、类别汇总、储蓄目标、剩余额度和已存金额。首次访问时自动创建预算。
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.Dashboard} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/dashboard [get]
func (h *BudgetHandler) Dashboard(c *gin.Context) {
	d, err := h.dashboard.Get(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, d)
}

// Get 获取预算
// @Summary 获取预算
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=object{budget=models.Budget,remaining=number}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budget [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	budget, err := h.budgets.Snapshot(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"budget": budget, "remaining": budget.Remaining()})
}

// Set 设置月度预算
// @Summary 设置月度预算
// @Description 金额不能为负，0 表示清空预算
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetBudgetRequest true "月度预算"
// @Success 200 {object} Response{data=object{budget=models.Budget,remaining=number}} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budget [put]
func (h *BudgetHandler) Set(c *gin.Context) {
	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindErrorMessage(err))
		return
	}

	budget, err := h.budgets.SetMonthlyAllocation(c.Request.Context(), middleware.GetCurrentUserID(c), req.MonthlyBudget)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessWithMessage(c, "budget updated", gin.H{"budget": budget, "remaining": budget.Remaining()})
}
