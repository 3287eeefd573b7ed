package asset

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"assetrecords/internal/model"
	assetmodel "assetrecords/internal/model/asset"
	"assetrecords/internal/pkg/logger"
	"assetrecords/internal/pkg/utils"
	assetservice "assetrecords/internal/service/asset"
)

// AssetHandler 资产批次处理器
type AssetHandler struct {
	service *assetservice.BatchService
}

// NewAssetHandler 创建 AssetHandler 实例
func NewAssetHandler(service *assetservice.BatchService) *AssetHandler {
	return &AssetHandler{
		service: service,
	}
}

// ListAssets 获取所有批次及其资产明细
func (h *AssetHandler) ListAssets(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	XRequestID := c.GetHeader("X-Request-ID")
	pathUrl := c.Request.URL.String()

	batches, err := h.service.ListBatchesWithAssets(c.Request.Context())
	if err != nil {
		logger.LogBusinessError(err, XRequestID, "", clientIP, "list_batches", "HANDLER", map[string]interface{}{
			"path":   pathUrl,
			"method": "GET",
		})
		c.JSON(http.StatusInternalServerError, model.APIResponse{
			Code:    http.StatusInternalServerError,
			Status:  "failed",
			Message: "Failed to list asset batches",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Asset batches retrieved successfully",
		Data: assetmodel.BatchListResponse{
			Batches: batches,
			Total:   len(batches),
		},
	})
}

// CreateAssets 创建批次
func (h *AssetHandler) CreateAssets(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	userAgent := c.GetHeader("User-Agent")
	XRequestID := c.GetHeader("X-Request-ID")
	pathUrl := c.Request.URL.String()

	var req assetmodel.CreateAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.LogBusinessError(err, XRequestID, "", clientIP, "create_batch", "HANDLER", map[string]interface{}{
			"path":       pathUrl,
			"method":     "POST",
			"reason":     "invalid_json",
			"user_agent": userAgent,
		})
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "failed",
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	batch, err := h.service.CreateBatch(c.Request.Context(), req.Assets)
	if err != nil {
		logger.LogBusinessError(err, XRequestID, "", clientIP, "create_batch", "HANDLER", map[string]interface{}{
			"path":        pathUrl,
			"method":      "POST",
			"asset_count": len(req.Assets),
		})
		status := errorStatus(err)
		c.JSON(status, model.APIResponse{
			Code:    status,
			Status:  "failed",
			Message: "Failed to create asset batch",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, model.APIResponse{
		Code:    http.StatusCreated,
		Status:  "success",
		Message: "Asset batch created successfully",
		Data:    batch,
	})
}

// UpdateAssets 整批更新批次内资产
func (h *AssetHandler) UpdateAssets(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	XRequestID := c.GetHeader("X-Request-ID")
	pathUrl := c.Request.URL.String()

	batchID, ok := parseBatchID(c)
	if !ok {
		return
	}

	var req assetmodel.UpdateAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "failed",
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	batch, err := h.service.UpdateBatch(c.Request.Context(), batchID, req.Assets)
	if err != nil {
		logger.LogBusinessError(err, XRequestID, "", clientIP, "update_batch", "HANDLER", map[string]interface{}{
			"path":        pathUrl,
			"method":      "PUT",
			"batch_id":    batchID,
			"asset_count": len(req.Assets),
		})
		status := errorStatus(err)
		c.JSON(status, model.APIResponse{
			Code:    status,
			Status:  "failed",
			Message: "Failed to update asset batch",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Asset batch updated successfully",
		Data:    batch,
	})
}

// DeleteAssets 删除批次及其全部资产
func (h *AssetHandler) DeleteAssets(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	XRequestID := c.GetHeader("X-Request-ID")
	pathUrl := c.Request.URL.String()

	batchID, ok := parseBatchID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteBatch(c.Request.Context(), batchID); err != nil {
		logger.LogBusinessError(err, XRequestID, "", clientIP, "delete_batch", "HANDLER", map[string]interface{}{
			"path":     pathUrl,
			"method":   "DELETE",
			"batch_id": batchID,
		})
		status := errorStatus(err)
		c.JSON(status, model.APIResponse{
			Code:    status,
			Status:  "failed",
			Message: "Failed to delete asset batch",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Asset batch deleted successfully",
	})
}

// parseBatchID 解析路径中的批次ID，非法时直接返回400
func parseBatchID(c *gin.Context) (uint, bool) {
	idStr := c.Param("batchId")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "failed",
			Message: "Invalid batch ID",
			Error:   err.Error(),
		})
		return 0, false
	}
	return uint(id), true
}

// errorStatus 业务错误到HTTP状态码的映射
// 批次不存在 → 404；调用方数据不一致、非法枚举 → 400；其余 → 500
func errorStatus(err error) int {
	switch {
	case errors.Is(err, assetmodel.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, assetmodel.ErrAssetNotInBatch), errors.Is(err, assetmodel.ErrInvalidAssetType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
