// uuid工具包
package utils

import (
	"github.com/google/uuid"
)

// GenerateUUID 生成UUID v4（基于随机数）
// 返回标准格式的UUID字符串，如：550e8400-e29b-41d4-a716-446655440000
func GenerateUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IsValidUUID 校验字符串是否为合法UUID
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
