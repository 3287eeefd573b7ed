/**
 * 初始化
 * @description: 包含服务初始化相关的类型定义
 * @func: setup 层仅负责依赖装配（Repository → Service → Handler），不侵入业务逻辑
 */
package setup

import (
	assetHandler "assetrecords/internal/handler/asset"
	assetService "assetrecords/internal/service/asset"
)

// AssetModule 是资产批次模块的聚合输出
// 设计目的：
// - 将批次相关的 Service 与 Handler 作为一个整体进行初始化与对外暴露，便于 router_manager 进行路由装配。
// - 保持层级约束（Handler → Service → Repository），setup 层仅负责"依赖装配"。
type AssetModule struct {
	// Handlers
	AssetHandler *assetHandler.AssetHandler

	// Services（对外暴露以供 router_manager 或其他模块使用）
	BatchService *assetService.BatchService
}
