package api

import (
	"smartbudget/middleware"
	"smartbudget/models"
	"smartbudget/service"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct {
	expenses *service.ExpenseService
}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler(expenses *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// ExpenseRequest 新增/更新消费记录请求
type ExpenseRequest struct {
	Description string   `json:"description" binding:"max=255" example:"Groceries"`
	Amount      *float64 `json:"amount" binding:"required,gt=0,lte=9999999999.99" example:"250.50"`
	Category    string   `json:"category" binding:"max=100" example:"Food"`
	Date        string   `json:"date" example:"2024-01-15 12:30:00"`
}

func (r ExpenseRequest) toInput() (service.ExpenseInput, error) {
	at, err := parseTime(r.Date)
	if err != nil {
		return service.ExpenseInput{}, err
	}
	return service.ExpenseInput{
		Description: r.Description,
		Amount:      r.Amount,
		Category:    r.Category,
		Time:        at,
	}, nil
}

// Create 新增消费记录
// @Summary 新增消费记录
// @Description 金额必须大于 0；类别为空时归为 Other；未传时间则取当前时间。返回记录与重算后的预算。
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExpenseRequest true "消费记录"
// @Success 201 {object} Response{data=object{expense=models.Expense,budget=models.Budget}} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindErrorMessage(err))
		return
	}
	in, err := req.toInput()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	expense, budget, err := h.expenses.Add(c.Request.Context(), middleware.GetCurrentUserID(c), in)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "expense added", gin.H{"expense": expense, "budget": budget})
}

// List 消费记录列表
// @Summary 消费记录列表
// @Description 按消费时间倒序，limit 默认 50、最大 100
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param limit query int false "每页数量" default(50)
// @Param offset query int false "偏移量" default(0)
// @Success 200 {object} Response{data=object{expenses=[]models.Expense,limit=int,offset=int}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	limit, offset := service.NormalizePage(
		queryInt(c, "limit", service.DefaultExpensePageSize),
		queryInt(c, "offset", 0),
	)

	expenses, err := h.expenses.List(c.Request.Context(), middleware.GetCurrentUserID(c), limit, offset)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"expenses": expenses, "limit": limit, "offset": offset})
}

// Get 消费记录详情
// @Summary 消费记录详情
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response{data=object{expense=models.Expense}} "获取成功"
// @Failure 404 {object} Response "记录不存在或无权访问"
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	expense, err := h.expenses.Get(c.Request.Context(), pathID(c), middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"expense": expense})
}

// Update 更新消费记录
// @Summary 更新消费记录
// @Description 覆盖描述、金额、类别和时间（未传时间则保留原值），返回记录与重算后的预算
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Param request body ExpenseRequest true "消费记录"
// @Success 200 {object} Response{data=object{expense=models.Expense,budget=models.Budget}} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "记录不存在或无权访问"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindErrorMessage(err))
		return
	}
	in, err := req.toInput()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	expense, budget, err := h.expenses.Update(c.Request.Context(), pathID(c), middleware.GetCurrentUserID(c), in)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessWithMessage(c, "expense updated", gin.H{"expense": expense, "budget": budget})
}

// Delete 删除消费记录
// @Summary 删除消费记录
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response{data=object{budget=models.Budget}} "删除成功"
// @Failure 404 {object} Response "记录不存在或无权访问"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	budget, err := h.expenses.Delete(c.Request.Context(), pathID(c), middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessWithMessage(c, "expense deleted", gin.H{"budget": budget})
}

// GetCategories 预置类别
// @Summary 预置消费类别
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]string} "获取成功"
// @Router /api/v1/expenses/categories [get]
func (h *ExpenseHandler) GetCategories(c *gin.Context) {
	Success(c, models.GetCategories())
}

// GetStatistics 消费统计
// @Summary 消费统计
// @Description 按类别汇总金额、笔数和占比，适合绘制饼图
// @Description
// @Description 时间范围类型说明：
// @Description - all: 全部（默认）
// @Description - month: 按月统计，year_month 参数（格式：2024-01），缺省为当月
// @Description - year: 按年统计，year 参数（格式：2024），缺省为当年
// @Description - custom: 自定义，start_time 和 end_time 参数（格式：2024-01-01）
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param range_type query string false "时间范围类型" Enums(all,month,year,custom)
// @Param year_month query string false "年月（2024-01）"
// @Param year query string false "年份（2024）"
// @Param start_time query string false "开始日期（2024-01-01）"
// @Param end_time query string false "结束日期（2024-12-31）"
// @Success 200 {object} Response{data=service.CategoryStats} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/statistics [get]
func (h *ExpenseHandler) GetStatistics(c *gin.Context) {
	r, rangeType, err := parseRange(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	stats, err := h.expenses.CategoryTotals(c.Request.Context(), middleware.GetCurrentUserID(c), r)
	if err != nil {
		Fail(c, err)
		return
	}

	data := gin.H{
		"range_type":     rangeType,
		"total_amount":   stats.TotalAmount,
		"total_count":    stats.TotalCount,
		"category_stats": stats.Categories,
	}
	if r.Start != nil {
		data["start_time"] = r.Start.Format(service.ReportTimeLayout)
	}
	if r.End != nil {
		data["end_time"] = r.End.Format(service.ReportTimeLayout)
	}
	Success(c, data)
}
