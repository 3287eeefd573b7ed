/**
 * 中间件:日志相关中间件
 * @func:
 *   - GinLoggingMiddleware Gin日志中间件[同时把客户端IP和请求ID存储到Gin上下文和标准上下文,供后续使用]
 */
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"assetrecords/internal/pkg/logger"
	"assetrecords/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GinLoggingMiddleware Gin日志中间件
// 记录所有HTTP请求的访问日志和错误日志
// 使用方式: router.Use(middlewareManager.GinLoggingMiddleware())
func (m *MiddlewareManager) GinLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// 提取并格式化客户端IP
		clientIP := utils.GetClientIP(c)
		XRequestID := c.GetHeader("X-Request-ID")
		userAgent := c.GetHeader("User-Agent")

		// 存储到Gin上下文
		c.Set("client_ip", clientIP) // 这个是标准化后的可以用作业务使用的客户端IP

		// 存储到标准上下文
		// c.Request.Context()返回标准的context.Context，不包含gin的上下文
		// handler之外的service层都以标准上下文为参数，所以这里把客户端IP和请求ID也写进去
		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, utils.ContextKeyClientIP, clientIP)
		if XRequestID != "" {
			ctx = context.WithValue(ctx, utils.ContextKeyRequestID, XRequestID)
		}
		c.Request = c.Request.WithContext(ctx)

		// 处理请求
		c.Next()

		// 记录访问日志
		duration := time.Since(start)
		statusCode := c.Writer.Status()

		logger.LogBusinessOperation("http_request", "", clientIP, XRequestID, "success", "API Request", map[string]interface{}{
			"operation":     "http_request",
			"method":        c.Request.Method,
			"url":           c.Request.URL.String(),
			"status_code":   statusCode,
			"duration":      duration.Milliseconds(),
			"client_ip":     clientIP,
			"user_agent":    userAgent,
			"X-Request-ID":  XRequestID,
			"referer":       c.Request.Referer(),
			"request_size":  c.Request.ContentLength,
			"response_size": int64(c.Writer.Size()),
			"timestamp":     logger.NowFormatted(),
		})

		// 如果是错误状态码，记录错误日志
		if statusCode >= 400 {
			errorMsg := ""
			if errors := c.Errors; len(errors) > 0 {
				errorMsg = errors.String()
			} else {
				// 如果没有详细错误信息，则根据状态码提供默认错误描述
				errorMsg = http.StatusText(statusCode)
			}

			logger.LogError(fmt.Errorf("HTTP %d: %s", statusCode, errorMsg), XRequestID, clientIP, "http_request", c.Request.Method, map[string]interface{}{
				"operation":    "http_request",
				"method":       c.Request.Method,
				"url":          c.Request.URL.String(),
				"status_code":  statusCode,
				"client_ip":    clientIP,
				"user_agent":   userAgent,
				"X-Request-ID": XRequestID,
				"timestamp":    logger.NowFormatted(),
			})
		}
	}
}
