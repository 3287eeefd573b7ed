/*
*
  - 数据库迁移工具
  - @description: 数据库模型迁移和测试数据初始化工具
  - @usage: go run main.go -env=test -seed=true -drop=true
    -drop
    是否先删除表（危险操作）
    -env string
    环境标识 (test, dev, prod) (default "test")
    -seed
    是否填充测试数据
    -verbose
    是否显示详细日志

示例:
main.exe -env=test -seed=true    # 测试环境迁移并填充数据
main.exe -env=prod -seed=false   # 生产环境仅迁移表结构
*/
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"assetrecords/internal/config"
	"assetrecords/internal/model/asset"
	"assetrecords/internal/pkg/database"
	"assetrecords/internal/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MigrateOptions 迁移选项配置
type MigrateOptions struct {
	Environment string // 环境标识: test, dev, prod
	SeedData    bool   // 是否填充测试数据
	DropFirst   bool   // 是否先删除表（危险操作）
	Verbose     bool   // 是否显示详细日志
}

// DataSeeder 测试数据填充器
type DataSeeder struct {
	db  *gorm.DB
	env string
	log *logger.LoggerManager
}

func main() {
	// 解析命令行参数
	opts := parseFlags()

	// 加载配置
	cfg, err := config.LoadConfig("", opts.Environment)
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 初始化日志管理器
	logManager, err := logger.InitLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}

	logManager.GetLogger().WithFields(logrus.Fields{
		"path":        "cmd/migrate/main.go",
		"operation":   "database_migration",
		"func_name":   "main",
		"environment": opts.Environment,
		"seed_data":   opts.SeedData,
		"drop_first":  opts.DropFirst,
	}).Info("开始数据库迁移")

	// 初始化数据库连接
	db, err := database.NewMySQLConnection(&cfg.Database.MySQL)
	if err != nil {
		logManager.GetLogger().WithFields(logrus.Fields{
			"path":      "cmd/migrate/main.go",
			"operation": "database_connection",
			"func_name": "main",
			"error":     err.Error(),
		}).Fatal("数据库连接失败")
	}

	// 执行迁移
	if err := performMigration(db, opts, logManager); err != nil {
		logManager.GetLogger().WithFields(logrus.Fields{
			"path":      "cmd/migrate/main.go",
			"operation": "database_migration",
			"func_name": "main",
			"error":     err.Error(),
		}).Fatal("数据库迁移失败")
	}

	logManager.GetLogger().WithFields(logrus.Fields{
		"path":      "cmd/migrate/main.go",
		"operation": "database_migration",
		"func_name": "main",
	}).Info("数据库迁移完成")
}

// parseFlags 解析命令行参数
func parseFlags() *MigrateOptions {
	opts := &MigrateOptions{}

	flag.StringVar(&opts.Environment, "env", "test", "环境标识 (test, dev, prod)")
	flag.BoolVar(&opts.SeedData, "seed", false, "是否填充测试数据")
	flag.BoolVar(&opts.DropFirst, "drop", false, "是否先删除表（危险操作）")
	flag.BoolVar(&opts.Verbose, "verbose", false, "是否显示详细日志")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "AssetRecords 数据库迁移工具\n\n")
		fmt.Fprintf(os.Stderr, "用法: %s [选项]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "选项:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n示例:\n")
		fmt.Fprintf(os.Stderr, "  %s -env=test -seed=true    # 测试环境迁移并填充数据\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -env=prod -seed=false   # 生产环境仅迁移表结构\n", os.Args[0])
	}

	flag.Parse()
	return opts
}

// performMigration 执行数据库迁移
func performMigration(db *gorm.DB, opts *MigrateOptions, logManager *logger.LoggerManager) error {
	// 1. 删除表（如果指定）
	if opts.DropFirst {
		if err := dropTables(db, logManager); err != nil {
			return fmt.Errorf("删除表失败: %w", err)
		}
	}

	// 2. 执行模型迁移
	if err := migrateModels(db, logManager); err != nil {
		return fmt.Errorf("模型迁移失败: %w", err)
	}

	// 3. 填充测试数据（如果指定）
	if opts.SeedData {
		seeder := NewDataSeeder(db, opts.Environment, logManager)
		if err := seeder.SeedAll(); err != nil {
			return fmt.Errorf("数据填充失败: %w", err)
		}
	}

	return nil
}

// dropTables 删除所有表
// 危险操作，仅用于开发环境重置
func dropTables(db *gorm.DB, logManager *logger.LoggerManager) error {
	logManager.GetLogger().WithFields(logrus.Fields{
		"path":      "cmd/migrate/main.go",
		"operation": "drop_tables",
		"func_name": "dropTables",
	}).Warn("开始删除数据库表")

	// 按依赖关系逆序：子表先删除
	models := []interface{}{
		&asset.Asset{},
		&asset.AssetBatch{},
	}

	for _, model := range models {
		if err := db.Migrator().DropTable(model); err != nil {
			logManager.GetLogger().WithFields(logrus.Fields{
				"path":      "cmd/migrate/main.go",
				"operation": "drop_table",
				"func_name": "dropTables",
				"model":     fmt.Sprintf("%T", model),
				"error":     err.Error(),
			}).Error("删除表失败")
		}
	}

	return nil
}

// migrateModels 执行模型迁移
func migrateModels(db *gorm.DB, loggerMgr *logger.LoggerManager) error {
	loggerMgr.GetLogger().Info("开始执行模型迁移...")

	// 父表先迁移，保证外键约束创建成功
	models := []interface{}{
		&asset.AssetBatch{},
		&asset.Asset{},
	}

	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("迁移模型 %T 失败: %w", model, err)
		}
		loggerMgr.GetLogger().WithField("model", fmt.Sprintf("%T", model)).Info("模型迁移成功")
	}

	loggerMgr.GetLogger().Info("所有模型迁移完成")
	return nil
}

// NewDataSeeder 创建数据填充器
func NewDataSeeder(db *gorm.DB, env string, logManager *logger.LoggerManager) *DataSeeder {
	return &DataSeeder{
		db:  db,
		env: env,
		log: logManager,
	}
}

// SeedAll 填充所有测试数据
func (s *DataSeeder) SeedAll() error {
	s.log.GetLogger().WithFields(logrus.Fields{
		"path":      "cmd/migrate/main.go",
		"operation": "seed_data",
		"func_name": "DataSeeder.SeedAll",
		"env":       s.env,
	}).Info("开始填充测试数据")

	if s.env == "prod" {
		s.log.GetLogger().Warn("生产环境跳过测试数据填充")
		return nil
	}

	if err := s.seedSampleBatch(); err != nil {
		return err
	}

	s.log.GetLogger().Info("测试数据填充完成")
	return nil
}

// seedSampleBatch 填充一个示例批次
// 已有数据时跳过，保证幂等
func (s *DataSeeder) seedSampleBatch() error {
	var count int64
	if err := s.db.Model(&asset.AssetBatch{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		s.log.GetLogger().Info("已存在批次数据，跳过填充")
		return nil
	}

	now := time.Now()
	maturity := now.AddDate(1, 0, 0)

	samples := []asset.Asset{
		{Name: "工商银行活期", AssetType: asset.AssetTypeBankCurrent, Amount: decimal.NewFromFloat(12000.50)},
		{Name: "招商银行定期一年", AssetType: asset.AssetTypeBankFixed, Amount: decimal.NewFromFloat(50000.00), MaturityDate: &maturity},
		{Name: "现金", AssetType: asset.AssetTypeCash, Amount: decimal.NewFromFloat(3000.00)},
	}

	total := decimal.Zero
	for i := range samples {
		total = total.Add(samples[i].Amount)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		batch := &asset.AssetBatch{
			BatchNo:          now.Format("20060102"),
			CreatedTime:      now,
			LastModifiedTime: now,
			TotalAmount:      total,
		}
		if err := tx.Create(batch).Error; err != nil {
			return err
		}
		for i := range samples {
			samples[i].BatchID = batch.ID
			if err := tx.Create(&samples[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
