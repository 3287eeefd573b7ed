/**
 * 路由:资产批次路由
 * @description: 资产批次路由模块
 */
package router

import (
	"github.com/gin-gonic/gin"
)

// setupAssetRoutes 设置资产批次路由
func (r *Router) setupAssetRoutes(v1 *gin.RouterGroup) {
	assets := v1.Group("/assets")
	{
		assets.GET("", r.assetModule.AssetHandler.ListAssets)                // 获取所有批次及其资产
		assets.POST("", r.assetModule.AssetHandler.CreateAssets)             // 创建批次
		assets.PUT("/:batchId", r.assetModule.AssetHandler.UpdateAssets)     // 整批更新批次内资产
		assets.DELETE("/:batchId", r.assetModule.AssetHandler.DeleteAssets)  // 删除批次及其资产
	}
}
