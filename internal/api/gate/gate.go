package gate

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/standup-backend/internal/apperr"
	"github.com/d60-Lab/standup-backend/pkg/response"
)

const (
	argsKey      = "gate.args"
	secretArg    = "BACKEND_SECRET"
	secretHeader = "X-BACKEND-SECRET"
	emailHeader  = "X-USER-EMAIL"

	// multipart 解析内存上限
	formMemoryLimit = 4 << 20
)

// Args 请求参数映射（JSON body 或表单）
type Args map[string]any

// Middleware 后端密钥闸门：解析参数并校验共享密钥
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		args, kind := parseArgs(c)
		if kind != 0 {
			response.Fail(c, kind)
			c.Abort()
			return
		}

		given, _ := args.Optional(secretArg)
		if given == "" {
			given = c.GetHeader(secretHeader)
		}
		if subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			response.Fail(c, apperr.BadSecret)
			c.Abort()
			return
		}

		c.Set(argsKey, args)
		c.Next()
	}
}

func parseArgs(c *gin.Context) (Args, apperr.Kind) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, apperr.BadEncode
	}

	if len(body) > 0 && !isForm(c.ContentType()) {
		args := Args{}
		if err := json.Unmarshal(body, &args); err != nil {
			return nil, apperr.BadEncode
		}
		return args, 0
	}

	// 表单编码：恢复 body 供标准库解析
	c.Request.Body = io.NopCloser(strings.NewReader(string(body)))
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		// ParseForm 不处理 multipart
		if err := c.Request.ParseMultipartForm(formMemoryLimit); err != nil {
			return nil, apperr.BadEncode
		}
	} else if err := c.Request.ParseForm(); err != nil {
		return nil, apperr.BadEncode
	}
	args := Args{}
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			args[key] = values[0]
		}
	}
	return args, 0
}

func isForm(contentType string) bool {
	return strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data")
}

// FromContext 取闸门解析出的参数；未经过闸门时为空映射
func FromContext(c *gin.Context) Args {
	if v, ok := c.Get(argsKey); ok {
		if args, ok := v.(Args); ok {
			return args
		}
	}
	return Args{}
}

// QueryArgs 将 query string 包装为 Args（GET 端点用）
func QueryArgs(c *gin.Context) Args {
	args := Args{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			args[key] = values[0]
		}
	}
	return args
}

// RequesterEmail 请求者身份，来自 X-USER-EMAIL 头
func RequesterEmail(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(emailHeader))
}

// String 必填字符串参数；缺失或为空返回 MISSING_ARG
func (a Args) String(key string) (string, error) {
	s, ok := a.Optional(key)
	if !ok || s == "" {
		return "", apperr.MissingArg
	}
	return s, nil
}

// Optional 可选字符串参数，JSON 标量统一转成字符串
func (a Args) Optional(key string) (string, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

// OptionalBool 可选布尔参数；无法解析返回 INVALID_ARG
func (a Args) OptionalBool(key string) (*bool, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case bool:
		b := t
		return &b, nil
	case string:
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(t)))
		if err != nil {
			return nil, apperr.InvalidArg
		}
		return &b, nil
	default:
		return nil, apperr.InvalidArg
	}
}

// Uint 必填正整数参数；缺失 MISSING_ARG，不可解析 INVALID_ARG
func (a Args) Uint(key string) (uint, error) {
	s, err := a.String(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, apperr.InvalidArg
	}
	return uint(n), nil
}
