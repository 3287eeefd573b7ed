// 模型:资产请求模型
// 批次创建与整批更新的请求结构体
package asset

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetInput 资产录入条目
// ID 为 0 表示新增资产，非 0 表示更新批次内已有资产
type AssetInput struct {
	ID           uint            `json:"id"`                                               // 资产ID，0表示新增
	Name         string          `json:"name" binding:"required,max=100"`                  // 资产名称，必填，最大100字符
	AssetType    AssetType       `json:"asset_type" binding:"required,min=1,max=6"`        // 资产类型，必填，1-6
	Amount       decimal.Decimal `json:"amount" binding:"required"`                        // 资产金额，必填
	MaturityDate *time.Time      `json:"maturity_date"`                                    // 到期日，可选
}

// CreateAssetsRequest 创建批次请求结构
type CreateAssetsRequest struct {
	Assets []AssetInput `json:"assets" binding:"dive"` // 资产列表，允许为空（创建空批次）
}

// UpdateAssetsRequest 整批更新请求结构
// 以请求中的资产列表为准做差异对账：新增、更新、删除
type UpdateAssetsRequest struct {
	Assets []AssetInput `json:"assets" binding:"dive"` // 资产列表，可以为空（清空批次内资产）
}
