package util

import (
	"net/http"
	"talentflow_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 错误码，与 HTTP 状态对应
const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeAlreadySubmitted = "ALREADY_SUBMITTED"
	CodeNotFound         = "NOT_FOUND"
	CodeSubmissionError  = "SUBMISSION_ERROR"
	CodeBadRequest       = "BAD_REQUEST"
	CodeConflict         = "CONFLICT"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Error:   defaultErrorCode(code),
	})
}

// ErrorWithDetails 带错误码与明细（如按题目分组的校验错误）
func ErrorWithDetails(c *gin.Context, status int, errorCode, message string, details interface{}) {
	c.JSON(status, Response{
		Code:    status,
		Message: message,
		Error:   errorCode,
		Details: details,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	InternalServerError(c)
}

func defaultErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusUnprocessableEntity:
		return CodeValidationError
	case http.StatusInternalServerError:
		return CodeInternalError
	}
	return ""
}

// LogSubmissionError 提交持久化失败，客户端可重试
func LogSubmissionError(c *gin.Context, err error) {
	logger.Log.Error("Submission failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	ErrorWithDetails(c, http.StatusInternalServerError, CodeSubmissionError, "Failed to save submission, please retry", nil)
}
