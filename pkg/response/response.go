package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/standup-backend/internal/apperr"
)

// Response 统一应答包：payload + status，可选 message / error
type Response struct {
	Payload any    `json:"payload"`
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success 正常应答，payload 为 nil 时输出空对象
func Success(c *gin.Context, payload any, message string) {
	if payload == nil {
		payload = gin.H{}
	}
	c.JSON(200, Response{Payload: payload, Status: 200, Message: message})
}

// Fail 按错误枚举应答；envelope 内 status 与 HTTP 状态码可能不同
func Fail(c *gin.Context, kind apperr.Kind) {
	c.JSON(kind.HTTPStatus(), Response{
		Payload: gin.H{},
		Status:  kind.JSONStatus(),
		Message: kind.Message(),
		Error:   kind.Code(),
	})
}

// FailErr 将任意 error 映射到应答；未知错误按 INTERNAL_DB_ERR 处理
func FailErr(c *gin.Context, err error) {
	var kind apperr.Kind
	if errors.As(err, &kind) {
		Fail(c, kind)
		return
	}
	Fail(c, apperr.InternalDB)
}
