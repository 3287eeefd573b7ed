// 模型:资产响应模型
// 批次查询的响应结构体
package asset

// BatchWithAssets 批次及其资产明细响应结构
type BatchWithAssets struct {
	Batch  *AssetBatch `json:"batch"`  // 批次信息
	Assets []*Asset    `json:"assets"` // 批次内资产列表，无资产时为空数组
}

// BatchListResponse 批次列表响应结构
type BatchListResponse struct {
	Batches []*BatchWithAssets `json:"batches"` // 批次列表
	Total   int                `json:"total"`   // 批次总数
}
