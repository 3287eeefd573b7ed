package asset

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"assetrecords/internal/model/asset"
	"assetrecords/internal/pkg/logger"
	"assetrecords/internal/pkg/utils"
	assetrepo "assetrecords/internal/repo/mysql/asset"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 批次号生成的最大重试次数
// 唯一索引兜底并发冲突，冲突方重新生成批次号，重试耗尽才报错
const maxBatchNoRetries = 8

// BatchService 资产批次服务
// 负责批次的创建、整批更新（差异对账）、删除和批次列表查询
// 所有变更操作在单个事务中完成：闭包返回nil提交，返回错误回滚
type BatchService struct {
	db *gorm.DB
}

// NewBatchService 创建 BatchService 实例
func NewBatchService(db *gorm.DB) *BatchService {
	return &BatchService{db: db}
}

// Ping 检查底层数据库连接是否可用
func (s *BatchService) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CreateBatch 创建批次
// 生成唯一批次号，批次与资产明细在同一事务内落库，总额为明细金额之和
// 并发撞上唯一索引时丢弃整个事务，换新事务从头重试：MySQL可重复读隔离下，
// 同一事务内的重扫复用旧读视图看不到赢家已提交的批次号，只有新事务能看到
func (s *BatchService) CreateBatch(ctx context.Context, inputs []asset.AssetInput) (*asset.AssetBatch, error) {
	if err := validateInputs(inputs); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxBatchNoRetries; attempt++ {
		var batch *asset.AssetBatch
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			batchRepo := assetrepo.NewBatchRepository(tx)
			assetRepo := assetrepo.NewAssetRepository(tx)

			batchNo, err := s.generateBatchNo(ctx, batchRepo)
			if err != nil {
				return err
			}

			now := time.Now()
			candidate := &asset.AssetBatch{
				BatchNo:          batchNo,
				CreatedTime:      now,
				LastModifiedTime: now,
				TotalAmount:      sumAmounts(inputs),
			}
			if err := batchRepo.Create(ctx, candidate); err != nil {
				return err
			}

			for i := range inputs {
				a := &asset.Asset{
					Name:         inputs[i].Name,
					AssetType:    inputs[i].AssetType,
					Amount:       inputs[i].Amount,
					MaturityDate: inputs[i].MaturityDate,
					BatchID:      candidate.ID,
				}
				if err := assetRepo.Create(ctx, a); err != nil {
					return err
				}
			}
			batch = candidate
			return nil
		})
		if err != nil {
			// 唯一索引兜底：事务已回滚，下一轮新事务重新生成批次号
			if isDuplicateKeyError(err) {
				lastErr = err
				continue
			}
			logger.LogBusinessError(err, utils.GetRequestIDFromContext(ctx), "", utils.GetClientIPFromContext(ctx), "create_batch", "SERVICE", map[string]interface{}{
				"operation":   "create_batch",
				"asset_count": len(inputs),
			})
			return nil, err
		}

		logger.LogBusinessOperation("create_batch", batch.BatchNo, utils.GetClientIPFromContext(ctx), utils.GetRequestIDFromContext(ctx), "success", "批次创建成功", map[string]interface{}{
			"batch_id":     batch.ID,
			"asset_count":  len(inputs),
			"total_amount": batch.TotalAmount.String(),
			"attempts":     attempt + 1,
		})
		return batch, nil
	}

	err := fmt.Errorf("%w: %v", asset.ErrBatchNoExhausted, lastErr)
	logger.LogBusinessError(err, utils.GetRequestIDFromContext(ctx), "", utils.GetClientIPFromContext(ctx), "create_batch", "SERVICE", map[string]interface{}{
		"operation":   "create_batch",
		"asset_count": len(inputs),
	})
	return nil, err
}

// UpdateBatch 整批更新批次内资产（差异对账）
// 以输入列表为准：ID为0的新增，非0的更新批次内已有资产，未出现的删除
// 输入引用了不属于该批次的资产ID时报 ErrAssetNotInBatch，绝不静默丢弃
func (s *BatchService) UpdateBatch(ctx context.Context, batchID uint, inputs []asset.AssetInput) (*asset.AssetBatch, error) {
	if err := validateInputs(inputs); err != nil {
		return nil, err
	}

	var batch *asset.AssetBatch
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batchRepo := assetrepo.NewBatchRepository(tx)
		assetRepo := assetrepo.NewAssetRepository(tx)

		existing, err := batchRepo.GetByID(ctx, batchID)
		if err != nil {
			return err
		}
		if existing == nil {
			return asset.ErrBatchNotFound
		}

		currentAssets, err := assetRepo.GetByBatchID(ctx, batchID)
		if err != nil {
			return err
		}
		currentByID := make(map[uint]*asset.Asset, len(currentAssets))
		for _, a := range currentAssets {
			currentByID[a.ID] = a
		}

		// 对账：新增或更新
		seen := make(map[uint]bool, len(inputs))
		for i := range inputs {
			in := &inputs[i]
			if in.ID == 0 {
				a := &asset.Asset{
					Name:         in.Name,
					AssetType:    in.AssetType,
					Amount:       in.Amount,
					MaturityDate: in.MaturityDate,
					BatchID:      batchID,
				}
				if err := assetRepo.Create(ctx, a); err != nil {
					return err
				}
				continue
			}

			current, ok := currentByID[in.ID]
			if !ok {
				// 调用方数据不一致，直接暴露
				return fmt.Errorf("%w: id=%d", asset.ErrAssetNotInBatch, in.ID)
			}
			if seen[in.ID] {
				// 同一资产ID在输入中出现多次，同样属于调用方数据缺陷
				return fmt.Errorf("%w: duplicate id=%d", asset.ErrAssetNotInBatch, in.ID)
			}
			current.Name = in.Name
			current.AssetType = in.AssetType
			current.Amount = in.Amount
			current.MaturityDate = in.MaturityDate
			current.BatchID = batchID
			if err := assetRepo.Update(ctx, current); err != nil {
				return err
			}
			seen[in.ID] = true
		}

		// 对账：删除输入中未出现的资产
		for _, a := range currentAssets {
			if !seen[a.ID] {
				if err := assetRepo.Delete(ctx, a.ID); err != nil {
					return err
				}
			}
		}

		existing.LastModifiedTime = time.Now()
		existing.TotalAmount = sumAmounts(inputs)
		if err := batchRepo.Update(ctx, existing); err != nil {
			return err
		}
		batch = existing
		return nil
	})
	if err != nil {
		logger.LogBusinessError(err, utils.GetRequestIDFromContext(ctx), "", utils.GetClientIPFromContext(ctx), "update_batch", "SERVICE", map[string]interface{}{
			"operation":   "update_batch",
			"batch_id":    batchID,
			"asset_count": len(inputs),
		})
		return nil, err
	}

	logger.LogBusinessOperation("update_batch", batch.BatchNo, utils.GetClientIPFromContext(ctx), utils.GetRequestIDFromContext(ctx), "success", "批次更新成功", map[string]interface{}{
		"batch_id":     batch.ID,
		"asset_count":  len(inputs),
		"total_amount": batch.TotalAmount.String(),
	})
	return batch, nil
}

// DeleteBatch 删除批次及其全部资产
// 先逐一删除资产再删除批次，同一事务内完成
func (s *BatchService) DeleteBatch(ctx context.Context, batchID uint) error {
	var batchNo string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batchRepo := assetrepo.NewBatchRepository(tx)
		assetRepo := assetrepo.NewAssetRepository(tx)

		existing, err := batchRepo.GetByID(ctx, batchID)
		if err != nil {
			return err
		}
		if existing == nil {
			return asset.ErrBatchNotFound
		}
		batchNo = existing.BatchNo

		assets, err := assetRepo.GetByBatchID(ctx, batchID)
		if err != nil {
			return err
		}
		for _, a := range assets {
			if err := assetRepo.Delete(ctx, a.ID); err != nil {
				return err
			}
		}

		return batchRepo.Delete(ctx, batchID)
	})
	if err != nil {
		logger.LogBusinessError(err, utils.GetRequestIDFromContext(ctx), batchNo, utils.GetClientIPFromContext(ctx), "delete_batch", "SERVICE", map[string]interface{}{
			"operation": "delete_batch",
			"batch_id":  batchID,
		})
		return err
	}

	logger.LogBusinessOperation("delete_batch", batchNo, utils.GetClientIPFromContext(ctx), utils.GetRequestIDFromContext(ctx), "success", "批次删除成功", map[string]interface{}{
		"batch_id": batchID,
	})
	return nil
}

// ListBatchesWithAssets 获取所有批次及其资产明细
// 批次一次查全，资产按批次ID集合一次查全（避免N+1），在内存中分组
// 无资产的批次照样出现在结果中，资产列表为空数组
func (s *BatchService) ListBatchesWithAssets(ctx context.Context) ([]*asset.BatchWithAssets, error) {
	batchRepo := assetrepo.NewBatchRepository(s.db)
	assetRepo := assetrepo.NewAssetRepository(s.db)

	batches, err := batchRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	batchIDs := make([]uint, 0, len(batches))
	for _, b := range batches {
		batchIDs = append(batchIDs, b.ID)
	}

	assets, err := assetRepo.GetByBatchIDs(ctx, batchIDs)
	if err != nil {
		return nil, err
	}

	grouped := make(map[uint][]*asset.Asset, len(batches))
	for _, a := range assets {
		grouped[a.BatchID] = append(grouped[a.BatchID], a)
	}

	result := make([]*asset.BatchWithAssets, 0, len(batches))
	for _, b := range batches {
		batchAssets := grouped[b.ID]
		if batchAssets == nil {
			batchAssets = []*asset.Asset{}
		}
		result = append(result, &asset.BatchWithAssets{
			Batch:  b,
			Assets: batchAssets,
		})
	}
	return result, nil
}

// generateBatchNo 生成唯一的日期批次号
// 规则：当日无批次 → "20060102"；已有批次 → "20060102-NN"，NN为当日最大序号+1，
// 两位零填充（超过99自然变宽，不截断）。生成后做一次存在性复查，
// 复查撞号则整个过程重来，重试耗尽报 ErrBatchNoExhausted
func (s *BatchService) generateBatchNo(ctx context.Context, batchRepo assetrepo.BatchRepository) (string, error) {
	for attempt := 0; attempt < maxBatchNoRetries; attempt++ {
		base := time.Now().Format("20060102")

		existing, err := batchRepo.FindByBatchNoPrefix(ctx, base)
		if err != nil {
			return "", err
		}

		batchNo := base
		if len(existing) > 0 {
			maxSuffix := 0
			for _, no := range existing {
				if no == base {
					continue
				}
				// 只认 "base-NN" 形式的后缀
				suffix, ok := strings.CutPrefix(no, base+"-")
				if !ok {
					continue
				}
				if n, err := strconv.Atoi(suffix); err == nil && n > maxSuffix {
					maxSuffix = n
				}
			}
			batchNo = fmt.Sprintf("%s-%02d", base, maxSuffix+1)
		}

		// 存在性复查，撞号重来；并发窗口内的冲突最终由唯一索引兜底
		exists, err := batchRepo.BatchNoExists(ctx, batchNo)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}
		return batchNo, nil
	}
	return "", asset.ErrBatchNoExhausted
}

// validateInputs 校验资产录入条目
func validateInputs(inputs []asset.AssetInput) error {
	for i := range inputs {
		if !inputs[i].AssetType.IsValid() {
			return fmt.Errorf("%w: %d", asset.ErrInvalidAssetType, inputs[i].AssetType)
		}
	}
	return nil
}

// sumAmounts 计算资产金额之和
func sumAmounts(inputs []asset.AssetInput) decimal.Decimal {
	total := decimal.Zero
	for i := range inputs {
		total = total.Add(inputs[i].Amount)
	}
	return total
}

// isDuplicateKeyError 判断是否为唯一键冲突错误
// 兼容MySQL(1062 Duplicate entry)和SQLite(UNIQUE constraint failed)
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
