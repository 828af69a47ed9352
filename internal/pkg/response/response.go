package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误码定义
const (
	CodeSuccess     = 0
	CodeParamError  = 1000
	CodeAuthFailed  = 1001
	CodeInvalidSig  = 1002
	CodeServerError = 5000
)

// 错误码对应的默认消息
var codeMessages = map[int]string{
	CodeSuccess:     "success",
	CodeParamError:  "参数错误",
	CodeAuthFailed:  "认证失败",
	CodeInvalidSig:  "签名校验失败",
	CodeServerError: "服务器内部错误",
}

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, status, code int, message string) {
	if message == "" {
		message = codeMessages[code]
	}
	c.JSON(status, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// ParamError 参数错误
func ParamError(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeParamError, message)
}

// AuthError 认证失败
func AuthError(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, CodeAuthFailed, message)
}

// SignatureError 签名校验失败
func SignatureError(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, CodeInvalidSig, message)
}

// ServerError 服务器错误
func ServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, CodeServerError, message)
}
