package asset

import (
	"context"
	"errors"

	"assetrecords/internal/model/asset"
	"assetrecords/internal/pkg/logger"

	"gorm.io/gorm"
)

// BatchRepository 接口定义
type BatchRepository interface {
	// Create 创建批次
	Create(ctx context.Context, batch *asset.AssetBatch) error
	// GetByID 根据ID获取批次，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id uint) (*asset.AssetBatch, error)
	// GetAll 获取所有批次（主键顺序）
	GetAll(ctx context.Context) ([]*asset.AssetBatch, error)
	// FindByBatchNoPrefix 获取批次号以指定前缀开头的所有批次号
	FindByBatchNoPrefix(ctx context.Context, prefix string) ([]string, error)
	// BatchNoExists 检查批次号是否已存在
	BatchNoExists(ctx context.Context, batchNo string) (bool, error)
	// Update 更新批次
	Update(ctx context.Context, batch *asset.AssetBatch) error
	// Delete 删除批次
	Delete(ctx context.Context, id uint) error
}

// batchRepository 实现
type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository 创建实例
func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) Create(ctx context.Context, batch *asset.AssetBatch) error {
	if batch == nil {
		return errors.New("batch is nil")
	}
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		logger.LogError(err, "", "", "create_batch", "REPO", map[string]interface{}{
			"operation": "create_batch",
			"batch_no":  batch.BatchNo,
		})
		return err
	}
	return nil
}

func (r *batchRepository) GetByID(ctx context.Context, id uint) (*asset.AssetBatch, error) {
	var batch asset.AssetBatch
	if err := r.db.WithContext(ctx).First(&batch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.LogError(err, "", "", "get_batch_by_id", "REPO", map[string]interface{}{
			"operation": "get_batch_by_id",
			"id":        id,
		})
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepository) GetAll(ctx context.Context) ([]*asset.AssetBatch, error) {
	var batches []*asset.AssetBatch
	if err := r.db.WithContext(ctx).Order("id").Find(&batches).Error; err != nil {
		logger.LogError(err, "", "", "get_all_batches", "REPO", map[string]interface{}{
			"operation": "get_all_batches",
		})
		return nil, err
	}
	return batches, nil
}

func (r *batchRepository) FindByBatchNoPrefix(ctx context.Context, prefix string) ([]string, error) {
	var batchNos []string
	if err := r.db.WithContext(ctx).Model(&asset.AssetBatch{}).
		Where("batch_no LIKE ?", prefix+"%").
		Pluck("batch_no", &batchNos).Error; err != nil {
		logger.LogError(err, "", "", "find_by_batch_no_prefix", "REPO", map[string]interface{}{
			"operation": "find_by_batch_no_prefix",
			"prefix":    prefix,
		})
		return nil, err
	}
	return batchNos, nil
}

func (r *batchRepository) BatchNoExists(ctx context.Context, batchNo string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&asset.AssetBatch{}).
		Where("batch_no = ?", batchNo).
		Count(&count).Error; err != nil {
		logger.LogError(err, "", "", "batch_no_exists", "REPO", map[string]interface{}{
			"operation": "batch_no_exists",
			"batch_no":  batchNo,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *batchRepository) Update(ctx context.Context, batch *asset.AssetBatch) error {
	if batch == nil || batch.ID == 0 {
		return errors.New("invalid batch or id")
	}
	// 指定列更新，保证零值字段（如清空后的总额）也会被持久化
	if err := r.db.WithContext(ctx).Model(batch).
		Select("batch_no", "created_time", "last_modified_time", "total_amount").
		Updates(batch).Error; err != nil {
		logger.LogError(err, "", "", "update_batch", "REPO", map[string]interface{}{
			"operation": "update_batch",
			"id":        batch.ID,
		})
		return err
	}
	return nil
}

func (r *batchRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&asset.AssetBatch{}, id).Error; err != nil {
		logger.LogError(err, "", "", "delete_batch", "REPO", map[string]interface{}{
			"operation": "delete_batch",
			"id":        id,
		})
		return err
	}
	return nil
}
