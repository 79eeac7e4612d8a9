package api

import (
	"smartbudget/middleware"
	"smartbudget/service"

	"github.com/gin-gonic/gin"
)

// GoalHandler 储蓄目标处理器
type GoalHandler struct {
	goals *service.GoalService
}

// NewGoalHandler 创建储蓄目标处理器
func NewGoalHandler(goals *service.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// GoalRequest 新增/修改储蓄目标请求
type GoalRequest struct {
	GoalName     string   `json:"goal_name" binding:"required,max=255" example:"Vacation"`
	TargetAmount *float64 `json:"target_amount" binding:"required,gt=0,lte=9999999999.99" example:"2000"`
}

// GoalProgressRequest 更新储蓄进度请求，current_amount 为绝对值
type GoalProgressRequest struct {
	CurrentAmount *float64 `json:"current_amount" binding:"required,gte=0,lte=9999999999.99" example:"500"`
}

// Create 新增储蓄目标
// @Summary 新增储蓄目标
// @Tags 储蓄目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GoalRequest true "储蓄目标"
// @Success 201 {object} Response{data=object{goal=models.SavingsGoal}} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindErrorMessage(err))
		return
	}

	goal, err := h.goals.Add(c.Request.Context(), middleware.GetCurrentUserID(c), req.GoalName, req.TargetAmount)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "goal added", gin.H{"goal": goal})
}

// List 储蓄目标列表
// @Summary 储蓄目标列表
// @Description 按创建时间倒序，同时返回已存金额合计
// @Tags 储蓄目标
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=object{goals=[]models.SavingsGoal,total_saved=number}} "获取成功"
// @Router /api/v1/goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	goals, err := h.goals.List(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"goals": goals, "total_saved": service.TotalSaved(goals)})
}

// Get 储蓄目标详情
// @Summary 储蓄目标详情
// @Tags 储蓄目标
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Success 200 {object} Response{data=object{goal=models.SavingsGoal}} "获取成功"
// @Failure 404 {object} Response "目标不存在或无权访问"
// @Router /api/v1/goals/{id} [get]
func (h *GoalHandler) Get(c *gin.Context) {
	goal, err := h.goals.Get(c.Request.Context(), pathID(c), middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"goal": goal})
}

// UpdateProgress 更新储蓄进度
// @Summary 更新储蓄进度
// @Description 以绝对值覆盖当前金额，可超过目标金额，不能为负
// @Tags 储蓄目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Param request body GoalProgressRequest true "当前金额"
// @Success 200 {object} Response{data=object{goal=models.SavingsGoal}} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "目标不存在或无权访问"
// @Router /api/v1/goals/{id}/progress [put]
func (h *GoalHandler) UpdateProgress(c *gin.Context) {
	var req GoalProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindErrorMessage(err))
		return
	}

	goal, err := h.goals.UpdateProgress(c.Request.Context(), pathID(c), middleware.GetCurrentUserID(c), req.CurrentAmount)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessWithMessage(c, "goal progress updated", gin.H{"goal": goal})
}

// Update 修改储蓄目标
// @Summary 修改储蓄目标名称和目标金额
// @Tags 储蓄目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Param request body GoalRequest true "储蓄目标"
// @Success 200 {object} Response{data=object{goal=models.SavingsGoal}} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "目标不存在或无权访问"
// @Router /api/v1/goals/{id} [put]
func (h *GoalHandler) Update(c *gin.Context) {
	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindErrorMessage(err))
		return
	}

	goal, err := h.goals.UpdateDetails(c.Request.Context(), pathID(c), middleware.GetCurrentUserID(c), req.GoalName, req.TargetAmount)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessWithMessage(c, "goal updated", gin.H{"goal": goal})
}

// Delete 删除储蓄目标
// @Summary 删除储蓄目标
// @Tags 储蓄目标
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "目标不存在或无权访问"
// @Router /api/v1/goals/{id} [delete]
func (h *GoalHandler) Delete(c *gin.Context) {
	if err := h.goals.Delete(c.Request.Context(), pathID(c), middleware.GetCurrentUserID(c)); err != nil {
		Fail(c, err)
		return
	}
	SuccessWithMessage(c, "goal deleted", nil)
}
