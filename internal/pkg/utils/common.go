// 通用的工具包
package utils

import (
	"context"

	"github.com/gin-gonic/gin"
)

// ContextKey 类型用于标准上下文键的定义，避免使用裸字符串造成键冲突
type ContextKey string

// ContextKeyClientIP 标准上下文中存储客户端IP的统一键
const ContextKeyClientIP ContextKey = "client_ip"

// ContextKeyRequestID 标准上下文中存储请求追踪ID的统一键
const ContextKeyRequestID ContextKey = "request_id"

// GetClientIPFromContext 从标准上下文读取客户端IP（统一键）
// 适用范围：service 层以下获取当前 clientIP 使用
// 来源：clientIP 最初是logging中间件写入标准上下文
// 说明：
// - 使用 ContextKeyClientIP 作为唯一键，保证读写一致，跨包可用
// - 如果不存在或类型不匹配，返回空字符串
func GetClientIPFromContext(ctx context.Context) string {
	v := ctx.Value(ContextKeyClientIP)
	if ip, ok := v.(string); ok {
		return ip
	}
	return ""
}

// GetRequestIDFromContext 从标准上下文读取请求追踪ID（统一键）
// 如果不存在或类型不匹配，返回空字符串
func GetRequestIDFromContext(ctx context.Context) string {
	v := ctx.Value(ContextKeyRequestID)
	if id, ok := v.(string); ok {
		return id
	}
	return ""
}

// GetRequestIDFromGinContext 从 Gin 上下文中提取请求追踪ID
// 来源：request_id 最初是logging中间件写入Gin上下文
func GetRequestIDFromGinContext(c *gin.Context) string {
	if v, ok := c.Get("request_id"); ok {
		if id, ok2 := v.(string); ok2 {
			return id
		}
	}
	return ""
}
