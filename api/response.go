package api

import (
	"net/http"

	"smartbudget/logging"
	"smartbudget/service"

	"github.com/gin-gonic/gin"
)

// Response 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, "success", data)
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Code:    http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401 错误响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound 404 错误响应
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// MethodNotAllowed 405 错误响应
func MethodNotAllowed(c *gin.Context) {
	Error(c, http.StatusMethodNotAllowed, "method not allowed")
}

// InternalError 500 错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// Fail 按业务错误类别输出响应，存储故障的细节仅在非生产环境返回
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)

	switch service.KindOf(err) {
	case service.KindInvalidInput:
		BadRequest(c, service.PublicMessage(err))
	case service.KindNotFound:
		NotFound(c, service.PublicMessage(err))
	case service.KindUnauthorized:
		Unauthorized(c, service.PublicMessage(err))
	case service.KindConflict:
		Error(c, http.StatusConflict, service.PublicMessage(err))
	default:
		logging.FromContext(c).WithError(err).Error("storage fault")
		InternalError(c, SafeErrorMessage(err, service.PublicMessage(err)))
	}
}
