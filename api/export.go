package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"smartbudget/middleware"
	"smartbudget/models"
	"smartbudget/service"

	"github.com/gin-gonic/gin"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	expenses *service.ExpenseService
	users    *service.UserService
	email    *service.EmailService
}

// NewExportHandler 创建导出处理器
func NewExportHandler(expenses *service.ExpenseService, users *service.UserService, email *service.EmailService) *ExportHandler {
	return &ExportHandler{expenses: expenses, users: users, email: email}
}

// EmailExportRequest 邮件导出请求
type EmailExportRequest struct {
	StartTime string `json:"start_time" example:"2024-01-01"`
	EndTime   string `json:"end_time" example:"2024-12-31"`
}

// load 解析 start_time/end_time 查询参数并读取区间内的消费记录
func (h *ExportHandler) load(c *gin.Context, startStr, endStr string) ([]models.Expense, service.TimeRange, bool) {
	r, err := parseDayRange(startStr, endStr)
	if err != nil {
		BadRequest(c, err.Error())
		return nil, r, false
	}

	expenses, err := h.expenses.Between(c.Request.Context(), middleware.GetCurrentUserID(c), r)
	if err != nil {
		Fail(c, err)
		return nil, r, false
	}
	return expenses, r, true
}

// ExportCSV 导出消费记录为 CSV
// @Summary 导出消费记录为 CSV
// @Description 不传时间范围则导出全部
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_time query string false "开始日期 (2024-01-01)"
// @Param end_time query string false "结束日期 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	expenses, _, ok := h.load(c, c.Query("start_time"), c.Query("end_time"))
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	if err := service.WriteExpenseCSV(buf, expenses); err != nil {
		InternalError(c, "failed to generate CSV")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename("csv")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出消费记录为 JSON
// @Summary 导出消费记录为 JSON
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param start_time query string false "开始日期 (2024-01-01)"
// @Param end_time query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=object{expenses=[]models.Expense,total_amount=number,total_count=int}} "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	expenses, _, ok := h.load(c, c.Query("start_time"), c.Query("end_time"))
	if !ok {
		return
	}

	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	Success(c, gin.H{
		"expenses":     expenses,
		"total_amount": models.RoundAmount(total),
		"total_count":  len(expenses),
	})
}

// ExportExcel 导出消费记录为 Excel
// @Summary 导出消费记录为 Excel
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_time query string false "开始日期 (2024-01-01)"
// @Param end_time query string false "结束日期 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	expenses, _, ok := h.load(c, c.Query("start_time"), c.Query("end_time"))
	if !ok {
		return
	}

	buf, err := service.BuildExpenseWorkbook(expenses)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to generate Excel file"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename("xlsx")))
	c.Data(http.StatusOK, service.ExcelContentType, buf.Bytes())
}

// SendEmail 以邮件附件发送 Excel 报表到当前用户邮箱
// @Summary 邮件发送消费报表
// @Tags 导出
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EmailExportRequest false "时间范围"
// @Success 200 {object} Response{data=object{sent_to=string,count=int}} "发送成功"
// @Failure 400 {object} Response "请求参数错误或邮件未启用"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/email [post]
func (h *ExportHandler) SendEmail(c *gin.Context) {
	var req EmailExportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, bindErrorMessage(err))
			return
		}
	}

	user, err := h.users.Get(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}

	expenses, r, ok := h.load(c, req.StartTime, req.EndTime)
	if !ok {
		return
	}

	if err := h.email.SendExpenseReport(user, expenses, r); err != nil {
		Fail(c, err)
		return
	}
	SuccessWithMessage(c, "report sent", gin.H{"sent_to": user.Email, "count": len(expenses)})
}

func exportFilename(ext string) string {
	return fmt.Sprintf("expenses_%s.%s", time.Now().Format("20060102_150405"), ext)
}
