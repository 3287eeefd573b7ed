/**
 * 中间件:安全中间件
 * @func:
 *   - GinCORSMiddleware CORS跨域资源共享中间件,处理跨域请求，设置必要的CORS头部信息
 *   - GinSecurityHeadersMiddleware 安全头部中间件,设置必要的安全头部信息，防止常见的安全漏洞
 *   - GinRequestIDMiddleware 请求ID中间件,为每个请求添加唯一的请求ID,方便日志跟踪和调试
 */
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"assetrecords/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GinCORSMiddleware CORS跨域资源共享中间件
// 处理跨域请求，设置必要的CORS头部信息
func (m *MiddlewareManager) GinCORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cors := &m.securityConfig.CORS
		if !cors.Enabled {
			c.Next()
			return
		}

		logrus.WithFields(logrus.Fields{
			"path":      c.Request.URL.Path,
			"operation": "cors_middleware",
			"method":    c.Request.Method,
			"origin":    c.Request.Header.Get("Origin"),
		}).Debug("Processing CORS request")

		// 获取请求来源
		origin := c.Request.Header.Get("Origin")

		// 设置CORS头部
		switch {
		case cors.AllowAllOrigins:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && originAllowed(origin, cors.AllowOrigins):
			c.Header("Access-Control-Allow-Origin", origin)
		}

		// 允许的HTTP方法
		if len(cors.AllowMethods) > 0 {
			c.Header("Access-Control-Allow-Methods", strings.Join(cors.AllowMethods, ", "))
		} else {
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")
		}

		// 允许的请求头
		if len(cors.AllowHeaders) > 0 {
			c.Header("Access-Control-Allow-Headers", strings.Join(cors.AllowHeaders, ", "))
		} else {
			c.Header("Access-Control-Allow-Headers",
				"Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		}

		// 允许发送凭据（cookies等）
		if cors.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		// 预检请求的缓存时间（秒）
		if cors.MaxAge > 0 {
			c.Header("Access-Control-Max-Age", strconv.Itoa(int(cors.MaxAge.Seconds())))
		}

		// 允许客户端访问的响应头
		c.Header("Access-Control-Expose-Headers", "Content-Length, Content-Type, X-Request-ID")

		// 处理预检请求（OPTIONS方法）
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		// 继续处理请求
		c.Next()
	}
}

// originAllowed 检查来源是否在白名单中
func originAllowed(origin string, allowed []string) bool {
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// GinSecurityHeadersMiddleware 安全头中间件
// 添加各种安全相关的HTTP头部，提高应用安全性
func (m *MiddlewareManager) GinSecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// X-Content-Type-Options: 防止MIME类型嗅探攻击
		c.Header("X-Content-Type-Options", "nosniff")

		// X-Frame-Options: 防止点击劫持攻击
		c.Header("X-Frame-Options", "DENY")

		// X-XSS-Protection: 启用浏览器XSS过滤器
		c.Header("X-XSS-Protection", "1; mode=block")

		// Referrer-Policy: 控制Referer头的发送策略
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Strict-Transport-Security: 强制HTTPS（仅在HTTPS环境下设置）
		if c.Request.TLS != nil || c.Request.Header.Get("X-Forwarded-Proto") == "https" {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		// Server: 隐藏服务器信息
		c.Header("Server", "AssetRecords")

		// 继续处理请求
		c.Next()
	}
}

// GinRequestIDMiddleware 请求ID中间件
// 为每个请求生成唯一ID，便于日志追踪和问题排查
func (m *MiddlewareManager) GinRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 检查是否已有请求ID（可能来自负载均衡器或代理）
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID, _ = utils.GenerateUUID()
		}

		// 设置请求ID到上下文中
		c.Set("request_id", requestID)
		// 回写到请求头，后续中间件直接读头即可拿到
		c.Request.Header.Set("X-Request-ID", requestID)

		// 设置响应头
		c.Header("X-Request-ID", requestID)

		// 继续处理请求
		c.Next()
	}
}
