// 模型:资产错误定义
// 资产批次相关的业务错误常量
package asset

import "errors"

var (
	// ErrBatchNotFound 批次不存在
	ErrBatchNotFound = errors.New("资产批次不存在")
	// ErrAssetNotInBatch 请求引用了不属于该批次的资产ID，属于调用方数据不一致
	ErrAssetNotInBatch = errors.New("资产不属于该批次")
	// ErrInvalidAssetType 资产类型不在合法枚举范围内
	ErrInvalidAssetType = errors.New("资产类型无效")
	// ErrBatchNoExhausted 批次号生成重试次数耗尽
	ErrBatchNoExhausted = errors.New("批次号生成失败，重试次数耗尽")
)
