package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 业务错误码
const (
	CodeOK                 = 0
	CodeInvalidParams      = 10001
	CodeUnauthorized       = 10002
	CodeForbidden          = 10003
	CodeTooManyRequests    = 10004
	CodeBodyTooLarge       = 10005
	CodeNotFound           = 40400
	CodeInternal           = 50000
	CodeStoreUnavailable   = 50300
	CodeServiceUnavailable = 50301
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Details interface{} `json:"details,omitempty"`
}

// FieldError 字段级校验错误
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// SuccessData 更新/删除类操作的响应数据
type SuccessData struct {
	Success bool `json:"success"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// Success 200 {success:true}
func Success(c *gin.Context) {
	OK(c, SuccessData{Success: true})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message string, details interface{}) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// ValidationError 400，附带字段级错误
func ValidationError(c *gin.Context, fields []FieldError) {
	ErrorWithDetails(c, http.StatusBadRequest, CodeInvalidParams, "参数校验失败", fields)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, CodeTooManyRequests, "请求过于频繁，请稍后再试")
}

// PayloadTooLarge 413
func PayloadTooLarge(c *gin.Context) {
	Error(c, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, "请求体过大")
}

// InternalError 500，不暴露内部错误
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "服务器内部错误")
}

// StoreUnavailable 503 数据存储不可用
func StoreUnavailable(c *gin.Context) {
	Error(c, http.StatusServiceUnavailable, CodeStoreUnavailable, "数据存储暂不可用，请稍后重试")
}

// ServiceUnavailable 503 依赖的外部服务未配置或不可用
func ServiceUnavailable(c *gin.Context, message string) {
	Error(c, http.StatusServiceUnavailable, CodeServiceUnavailable, message)
}
