package server

import (
	"fmt"

	"assetrecords/internal/app/server/router"
	"assetrecords/internal/config"
	"assetrecords/internal/pkg/database"
	"assetrecords/internal/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App 应用程序结构体
type App struct {
	config     *config.Config
	configPath string
	env        string
	db         *gorm.DB
	router     *router.Router
}

// NewApp 创建新的应用程序实例
// 装配顺序：日志 → 数据库 → 路由
// configPath和env用于配置热加载监听，与加载配置时的参数保持一致
func NewApp(cfg *config.Config, configPath, env string) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	// 初始化日志管理器
	if _, err := logger.InitLogger(&cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	// 初始化数据库连接
	db, err := database.NewMySQLConnection(&cfg.Database.MySQL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// 初始化路由器并注册路由
	r := router.NewRouter(db, cfg)
	r.SetupRoutes()

	logger.LogSystemEvent("app", "initialized", "应用初始化完成", logrus.InfoLevel, map[string]interface{}{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	return &App{
		config:     cfg,
		configPath: configPath,
		env:        env,
		db:         db,
		router:     r,
	}, nil
}

// GetConfig 获取配置实例
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetRouter 获取路由器实例
func (a *App) GetRouter() *router.Router {
	return a.router
}

// GetDB 获取数据库实例
func (a *App) GetDB() *gorm.DB {
	return a.db
}

// Start 启动应用程序
// 启动配置热加载监听，日志配置变更时动态更新日志管理器
func (a *App) Start() error {
	if err := config.StartConfigWatcher(a.configPath, a.env); err != nil {
		// 配置热加载失败不阻塞启动
		logger.LogSystemEvent("config_watcher", "start_failed", err.Error(), logrus.WarnLevel, nil)
	} else {
		_ = config.AddConfigReloadCallback(config.LogConfigReloadCallback)
		// 日志配置变更时动态更新日志管理器
		_ = config.AddConfigReloadCallback(func(oldCfg, newCfg *config.Config) error {
			if logger.LoggerInstance == nil || newCfg == nil {
				return nil
			}
			return logger.LoggerInstance.UpdateConfig(&newCfg.Log)
		})
	}

	logger.LogSystemEvent("app", "startup", "应用启动", logrus.InfoLevel, map[string]interface{}{
		"address": a.config.Server.GetAddress(),
	})
	return nil
}

// Stop 停止应用程序
// 关闭配置监听和数据库连接
func (a *App) Stop() error {
	_ = config.StopConfigWatcher()

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				return fmt.Errorf("failed to close database: %w", err)
			}
		}
	}

	logger.LogSystemEvent("app", "shutdown", "应用停止", logrus.InfoLevel, nil)
	return nil
}
