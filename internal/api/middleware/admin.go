package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zentra-ai/zentra_go_bot/internal/pkg/response"
)

// AdminToken 统计接口的令牌白名单校验。
// 令牌通过 Authorization: Bearer <token> 传入，在配置里维护，不硬编码
func AdminToken(tokens []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.AuthError(c, "")
			c.Abort()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		for _, allowed := range tokens {
			if subtle.ConstantTimeCompare([]byte(token), []byte(allowed)) == 1 {
				c.Next()
				return
			}
		}

		response.AuthError(c, "")
		c.Abort()
	}
}
