package asset

import (
	"context"
	"testing"
	"time"

	"assetrecords/internal/model/asset"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupBatchServiceEnv 初始化批次服务测试环境 (使用 SQLite 内存数据库)
func setupBatchServiceEnv(t *testing.T) (*gorm.DB, *BatchService) {
	// 1. 初始化 SQLite 内存数据库
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to sqlite: %v", err)
	}

	// 2. 自动迁移
	err = db.AutoMigrate(
		&asset.AssetBatch{},
		&asset.Asset{},
	)
	if err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	// 3. 初始化服务
	svc := NewBatchService(db)

	return db, svc
}

// sampleInputs 构造一组基础的资产录入条目
func sampleInputs() []asset.AssetInput {
	maturity := time.Now().AddDate(1, 0, 0)
	return []asset.AssetInput{
		{Name: "工商银行活期", AssetType: asset.AssetTypeBankCurrent, Amount: decimal.NewFromFloat(12000.50)},
		{Name: "招商银行定期", AssetType: asset.AssetTypeBankFixed, Amount: decimal.NewFromFloat(50000.00), MaturityDate: &maturity},
	}
}

// TestCreateBatchFirstOfDay 当日首个批次的批次号为纯日期，无序号后缀
func TestCreateBatchFirstOfDay(t *testing.T) {
	db, svc := setupBatchServiceEnv(t)
	ctx := context.Background()

	batch, err := svc.CreateBatch(ctx, sampleInputs())
	require.NoError(t, err)
	require.NotNil(t, batch)

	// 批次号为当日日期
	assert.Equal(t, time.Now().Format("20060102"), batch.BatchNo)
	// 总额为明细金额之和
	assert.True(t, batch.TotalAmount.Equal(decimal.NewFromFloat(62000.50)),
		"total_amount = %s", batch.TotalAmount)

	// 资产明细全部落库并挂到批次上
	var assets []*asset.Asset
	require.NoError(t, db.Where("batch_id = ?", batch.ID).Find(&assets).Error)
	assert.Len(t, assets, 2)
	for _, a := range assets {
		assert.Equal(t, batch.ID, a.BatchID)
	}
}

// TestCreateBatchSuffixSequence 同日多个批次依次获得 -01、-02 后缀
func TestCreateBatchSuffixSequence(t *testing.T) {
	_, svc := setupBatchServiceEnv(t)
	ctx := context.Background()
	base := time.Now().Format("20060102")

	first, err := svc.CreateBatch(ctx, sampleInputs())
	require.NoError(t, err)
	second, err := svc.CreateBatch(ctx, sampleInputs())
	require.NoError(t, err)
	third, err := svc.CreateBatch(ctx, sampleInputs())
	require.NoError(t, err)

	assert.Equal(t, base, first.BatchNo)
	assert.Equal(t, base+"-01", second.BatchNo)
	assert.Equal(t, base+"-02", third.BatchNo)
}

// TestCreateBatchSuffixPastExistingMax 序号接在当日已有最大序号之后，不填补空洞
func TestCreateBatchSuffixPastExistingMax(t *testing.T) {
	db, svc := setupBatchServiceEnv(t)
	ctx := context.Background()
	base := time.Now().Format("20060102")
	now := time.Now()

	// 预置当日已有批次：纯日期号和一个序号为05的批次
	require.NoError(t, db.Create(&asset.AssetBatch{
		BatchNo: base, CreatedTime: now, LastModifiedTime: now, TotalAmount: decimal.Zero,
	}).Error)
	require.NoError(t, db.Create(&asset.AssetBatch{
		BatchNo: base + "-05", CreatedTime: now, LastModifiedTime: now, TotalAmount: decimal.Zero,
	}).Error)

	batch, err := svc.CreateBatch(ctx, sampleInputs())
	require.NoError(t, err)
	assert.Equal(t, base+"-06", batch.BatchNo)
}

// TestCreateBatchSuffixWidensPast99 序号超过99时自然变宽为三位，不截断
func TestCreateBatchSuffixWidensPast99(t *testing.T) {
	db, svc := setupBatchServiceEnv(t)
	ctx := context.Background()
	base := time.Now().Format("20060102")
	now := time.Now()

	require.NoError(t, db.Create(&asset.AssetBatch{
		BatchNo: base + "-99", CreatedTime: now, LastModifiedTime: now, TotalAmount: decimal.Zero,
	}).Error)

	batch, err := svc.CreateBatch(ctx, sampleInputs())
	require.NoError(t, err)
	assert.Equal(t, base+"-100", batch.BatchNo)
}

// TestCreateBatchRetriesOnDuplicateKey 并发撞号由唯一索引兜底后重试，不对外暴露约束冲突
// 用 gorm 回调模拟竞争者：首次插入批次前，在同一事务内先插入一条相同批次号的记录，
// 使服务的插入真实撞上唯一索引；事务回滚后新事务重试应当成功
func TestCreateBatchRetriesOnDuplicateKey(t *testing.T) {
	db, svc := setupBatchServiceEnv(t)
	ctx := context.Background()

	collided := false
	var injectErr error
	err := db.Callback().Create().Before("gorm:create").Register("competing_create", func(tx *gorm.DB) {
		if collided {
			return
		}
		b, ok := tx.Statement.Dest.(*asset.AssetBatch)
		if !ok {
			return
		}
		collided = true
		injectErr = tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO asset_batches (batch_no, created_time, last_modified_time, total_amount) VALUES (?, ?, ?, ?)",
			b.BatchNo, time.Now(), time.Now(), "0",
		).Error
	})
	require.NoError(t, err)

	batch, err := svc.CreateBatch(ctx, sampleInputs())
	require.NoError(t, err)
	require.NotNil(t, batch)
	require.True(t, collided, "竞争插入未触发")
	require.NoError(t, injectErr)

	// 最终只留下重试成功的那一个批次
	var count int64
	require.NoError(t, db.Model(&asset.AssetBatch{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var assetCount int64
	require.NoError(t, db.Model(&asset.Asset{}).Where("batch_id = ?", batch.ID).Count(&assetCount).Error)
	assert.EqualValues(t, 2, assetCount)
}

// TestCreateBatchInvalidAssetType 非法资产类型拒绝入库
func TestCreateBatchInvalidAssetType(t *testing.T) {
	db, svc := setupBatchServiceEnv(t)
	ctx := context.Background()

	inputs := []asset.AssetInput{
		{Name: "未知资产", AssetType: asset.AssetType(9), Amount: decimal.NewFromInt(100)},
	}
	_, err := svc.CreateBatch(ctx, inputs)
	assert.ErrorIs(t, err, asset.ErrInvalidAssetType)

	// 不应产生任何批次
	var count int64
	require.NoError(t, db.Model(&asset.AssetBatch{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

// TestUpdateBatchReconcile 整批更新：修改已有资产、新增一条、删除未出现的
func TestUpdateBatchReconcile(t *testing.T) {
	db, svc := setupBatchServiceEnv(t)
	ctx := context.Background()

	created, err := svc.CreateBatch(ctx, sampleInputs())
	require.NoError(t, err)

	var current []*asset.Asset
	require.NoError(t, db.Where("batch_id = ?", created.ID).Order("id").Find(&current).Error)
	require.Len(t, current, 2)

	// 保留并修改第一条，丢弃第二条，新增一条现金
	inputs := []asset.AssetInput{
		{ID: current[0].ID, Name: "工商银行活期(改)", AssetType: asset.AssetTypeBankCurrent, Amount: decimal.NewFromFloat(8000.00)},
		{Name: "现金", AssetType: asset.AssetTypeCash, Amount: decimal.NewFromFloat(2000.00)},
	}
	updated, err := svc.UpdateBatch(ctx, created.ID, inputs)
	require.NoError(t, err)

	// 总额按新列表重新计算
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromFloat(10000.00)),
		"total_amount = %s", updated.TotalAmount)
	// 批次号和创建时间保持不变
	assert.Equal(t, created.BatchNo, updated.BatchNo)
	assert.WithinDuration(t, created.CreatedTime, updated.CreatedTime, time.Second)

	var after []*asset.Asset
	require.NoError(t, db.Where("batch_id = ?", created.ID).Order("id").Find(&after).Error)
	require.Len(t, after, 2)
	assert.Equal(t, current[0].ID, after[0].ID)
	assert.Equal(t, "工商银行活期(改)", after[0].Name)
	assert.True(t, after[0].Amount.Equal(decimal.NewFromFloat(8000.00)))
	// 第二条原资产已被删除
	for _, a := range after {
		assert.NotEqual(t, current[1].ID, a.ID)
	}
}

// TestUpdateBatchEmptyList 空列表清空批次资产，总额归零
func TestUpdateBatchEmptyList(t *testing.T) {
	db, svc := setupBatchServiceEnv(t)
	ctx := context.Background()

	created, err := svc.CreateBatch(ctx, sampleInputs())
	require.NoError(t, err)

	updated, err := svc.UpdateBatch(ctx, created.ID, []asset.AssetInput{})
	require.NoError(t, err)
	assert.True(t, updated.TotalAmount.IsZero())

	var count int64
	require.NoError(t, db.Model(&asset.Asset{}).Where("batch_id = ?", created.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

// TestUpdateBatchAssetNotInBatch 引用不属于该批次的资产ID时整体失败回滚
func TestUpdateBatchAssetNotInBatch(t *testing.T) {
	db, svc := setupBatchServiceEnv(t)
	ctx := context.Background()

	batchA, err := svc.CreateBatch(ctx, sampleInputs())
	require.NoError(t, err)
	batchB, err := svc.CreateBatch(ctx, sampleInputs())
	require.NoError(t, err)

	var assetsB []*asset.Asset
	require.NoError(t, db.Where("batch_id = ?", batchB.ID).Find(&assetsB).Error)
	require.NotEmpty(t, assetsB)

	// 用批次B的资产ID更新批次A
	inputs := []asset.AssetInput{
		{ID: assetsB[0].ID, Name: "越界资产", AssetType: asset.AssetTypeCash, Amount: decimal.NewFromInt(1)},
	}
	_, err = svc.UpdateBatch(ctx, batchA.ID, inputs)
	assert.ErrorIs(t, err, asset.ErrAssetNotInBatch)

	// 批次A的资产不受影响
	var count int64
	require.NoError(t, db.Model(&asset.Asset{}).Where("batch_id = ?", batchA.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

// TestCreateBatchEmptyList 空资产列表创建空批次，总额为零
func TestCreateBatchEmptyList(t *testing.T) {
	_, svc := setupBatchServiceEnv(t)
	ctx := context.Background()

	batch, err := svc.CreateBatch(ctx, []asset.AssetInput{})
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("20060102"), batch.BatchNo)
	assert.True(t, batch.TotalAmount.IsZero())
}

// TestUpdateBatchDuplicateAssetID 同一资产ID在输入中重复出现时整体失败
func TestUpdateBatchDuplicateAssetID(t *testing.T) {
	db, svc := setupBatchServiceEnv(t)
	ctx := context.Background()

	created, err := svc.CreateBatch(ctx, sampleInputs())
	require.NoError(t, err)

	var current []*asset.Asset
	require.NoError(t, db.Where("batch_id = ?", created.ID).Order("id").Find(&current).Error)
	require.NotEmpty(t, current)

	inputs := []asset.AssetInput{
		{ID: current[0].ID, Name: "重复一", AssetType: asset.AssetTypeCash, Amount: decimal.NewFromInt(1)},
		{ID: current[0].ID, Name: "重复二", AssetType: asset.AssetTypeCash, Amount: decimal.NewFromInt(2)},
	}
	_, err = svc.UpdateBatch(ctx, created.ID, inputs)
	assert.ErrorIs(t, err, asset.ErrAssetNotInBatch)

	// 回滚后原资产保持不变
	var name string
	require.NoError(t, db.Model(&asset.Asset{}).Where("id = ?", current[0].ID).Select("name").Scan(&name).Error)
	assert.Equal(t, current[0].Name, name)
}

// TestUpdateBatchNotFound 更新不存在的批次
func TestUpdateBatchNotFound(t *testing.T) {
	_, svc := setupBatchServiceEnv(t)
	ctx := context.Background()

	_, err := svc.UpdateBatch(ctx, 9999, []asset.AssetInput{})
	assert.ErrorIs(t, err, asset.ErrBatchNotFound)
}

// TestDeleteBatch 删除批次时连带删除其全部资产
func TestDeleteBatch(t *testing.T) {
	db, svc := setupBatchServiceEnv(t)
	ctx := context.Background()

	created, err := svc.CreateBatch(ctx, sampleInputs())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBatch(ctx, created.ID))

	var batchCount, assetCount int64
	require.NoError(t, db.Model(&asset.AssetBatch{}).Count(&batchCount).Error)
	require.NoError(t, db.Model(&asset.Asset{}).Where("batch_id = ?", created.ID).Count(&assetCount).Error)
	assert.EqualValues(t, 0, batchCount)
	assert.EqualValues(t, 0, assetCount)
}

// TestDeleteBatchNotFound 删除不存在的批次
func TestDeleteBatchNotFound(t *testing.T) {
	_, svc := setupBatchServiceEnv(t)
	ctx := context.Background()

	err := svc.DeleteBatch(ctx, 9999)
	assert.ErrorIs(t, err, asset.ErrBatchNotFound)
}

// TestListBatchesWithAssets 列表查询返回全部批次及分组后的资产，无资产批次返回空数组
func TestListBatchesWithAssets(t *testing.T) {
	db, svc := setupBatchServiceEnv(t)
	ctx := context.Background()
	now := time.Now()

	withAssets, err := svc.CreateBatch(ctx, sampleInputs())
	require.NoError(t, err)

	// 预置一个没有任何资产的批次
	empty := &asset.AssetBatch{
		BatchNo:          "20200101",
		CreatedTime:      now,
		LastModifiedTime: now,
		TotalAmount:      decimal.Zero,
	}
	require.NoError(t, db.Create(empty).Error)

	list, err := svc.ListBatchesWithAssets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := make(map[uint]*asset.BatchWithAssets, len(list))
	for _, item := range list {
		byID[item.Batch.ID] = item
	}

	require.Contains(t, byID, withAssets.ID)
	assert.Len(t, byID[withAssets.ID].Assets, 2)

	require.Contains(t, byID, empty.ID)
	assert.NotNil(t, byID[empty.ID].Assets)
	assert.Empty(t, byID[empty.ID].Assets)
}

// TestPing 数据库连通性检查
func TestPing(t *testing.T) {
	_, svc := setupBatchServiceEnv(t)
	assert.NoError(t, svc.Ping(context.Background()))
}
