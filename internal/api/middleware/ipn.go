package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/zentra-ai/zentra_go_bot/internal/pkg/response"
)

const SigHeader = "x-nowpayments-sig"

// VerifyIPN NOWPayments 回调签名校验中间件。
// 签名是对按键名排序后的 JSON 载荷做 HMAC-SHA512。
// 校验通过后恢复请求体供后续 handler 绑定
func VerifyIPN(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.ParamError(c, "读取请求体失败")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		sig := c.GetHeader(SigHeader)
		if sig == "" {
			response.SignatureError(c, "缺少签名头")
			c.Abort()
			return
		}

		expected, err := Sign(body, secret)
		if err != nil {
			response.ParamError(c, "载荷不是合法 JSON")
			c.Abort()
			return
		}

		if !hmac.Equal([]byte(sig), []byte(expected)) {
			response.SignatureError(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}

// Sign 计算载荷签名。json.Marshal 对 map 的键做字典序排序，
// 正好符合 NOWPayments 对排序后 JSON 签名的要求
func Sign(payload []byte, secret string) (string, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return "", err
	}

	sorted, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(sorted)
	return hex.EncodeToString(mac.Sum(nil)), nil
}
