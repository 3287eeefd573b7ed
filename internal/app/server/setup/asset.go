/**
 * 初始化:资产批次模块
 * @description: 资产批次模块初始化
 */
package setup

import (
	"assetrecords/internal/pkg/logger"

	assetHandler "assetrecords/internal/handler/asset"
	assetService "assetrecords/internal/service/asset"

	"gorm.io/gorm"
)

// BuildAssetModule 构建资产批次模块
func BuildAssetModule(db *gorm.DB) *AssetModule {
	logger.WithFields(map[string]interface{}{
		"path":      "setup.asset",
		"operation": "build_module",
		"func_name": "setup.BuildAssetModule",
	}).Info("开始初始化资产批次模块")

	// Service 初始化（事务内自建tx作用域的Repository）
	batchService := assetService.NewBatchService(db)

	// Handler 初始化
	handler := assetHandler.NewAssetHandler(batchService)

	logger.WithFields(map[string]interface{}{
		"path":      "setup.asset",
		"operation": "build_module",
		"func_name": "setup.BuildAssetModule",
	}).Info("资产批次模块初始化完成")

	return &AssetModule{
		AssetHandler: handler,
		BatchService: batchService,
	}
}
