package asset

import (
	"context"
	"errors"

	"assetrecords/internal/model/asset"
	"assetrecords/internal/pkg/logger"

	"gorm.io/gorm"
)

// AssetRepository 接口定义
type AssetRepository interface {
	// Create 创建资产
	Create(ctx context.Context, a *asset.Asset) error
	// GetByID 根据ID获取资产，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id uint) (*asset.Asset, error)
	// GetByBatchID 获取指定批次的所有资产
	GetByBatchID(ctx context.Context, batchID uint) ([]*asset.Asset, error)
	// GetByBatchIDs 按批次ID集合批量获取资产（一次查询，避免N+1）
	GetByBatchIDs(ctx context.Context, batchIDs []uint) ([]*asset.Asset, error)
	// Update 更新资产
	Update(ctx context.Context, a *asset.Asset) error
	// Delete 删除资产
	Delete(ctx context.Context, id uint) error
}

// assetRepository 实现
type assetRepository struct {
	db *gorm.DB
}

// NewAssetRepository 创建实例
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) Create(ctx context.Context, a *asset.Asset) error {
	if a == nil {
		return errors.New("asset is nil")
	}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		logger.LogError(err, "", "", "create_asset", "REPO", map[string]interface{}{
			"operation": "create_asset",
			"name":      a.Name,
			"batch_id":  a.BatchID,
		})
		return err
	}
	return nil
}

func (r *assetRepository) GetByID(ctx context.Context, id uint) (*asset.Asset, error) {
	var a asset.Asset
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.LogError(err, "", "", "get_asset_by_id", "REPO", map[string]interface{}{
			"operation": "get_asset_by_id",
			"id":        id,
		})
		return nil, err
	}
	return &a, nil
}

func (r *assetRepository) GetByBatchID(ctx context.Context, batchID uint) ([]*asset.Asset, error) {
	var assets []*asset.Asset
	if err := r.db.WithContext(ctx).Where("batch_id = ?", batchID).Order("id").Find(&assets).Error; err != nil {
		logger.LogError(err, "", "", "get_assets_by_batch_id", "REPO", map[string]interface{}{
			"operation": "get_assets_by_batch_id",
			"batch_id":  batchID,
		})
		return nil, err
	}
	return assets, nil
}

func (r *assetRepository) GetByBatchIDs(ctx context.Context, batchIDs []uint) ([]*asset.Asset, error) {
	if len(batchIDs) == 0 {
		return []*asset.Asset{}, nil
	}
	var assets []*asset.Asset
	if err := r.db.WithContext(ctx).Where("batch_id IN ?", batchIDs).Order("id").Find(&assets).Error; err != nil {
		logger.LogError(err, "", "", "get_assets_by_batch_ids", "REPO", map[string]interface{}{
			"operation": "get_assets_by_batch_ids",
			"count":     len(batchIDs),
		})
		return nil, err
	}
	return assets, nil
}

func (r *assetRepository) Update(ctx context.Context, a *asset.Asset) error {
	if a == nil || a.ID == 0 {
		return errors.New("invalid asset or id")
	}
	// 指定列更新，保证置空的到期日也会被持久化
	if err := r.db.WithContext(ctx).Model(a).
		Select("name", "asset_type", "amount", "maturity_date", "batch_id").
		Updates(a).Error; err != nil {
		logger.LogError(err, "", "", "update_asset", "REPO", map[string]interface{}{
			"operation": "update_asset",
			"id":        a.ID,
		})
		return err
	}
	return nil
}

func (r *assetRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&asset.Asset{}, id).Error; err != nil {
		logger.LogError(err, "", "", "delete_asset", "REPO", map[string]interface{}{
			"operation": "delete_asset",
			"id":        id,
		})
		return err
	}
	return nil
}
