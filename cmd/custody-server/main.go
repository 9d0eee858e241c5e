package main

import (
	"context"
	"fmt"
	"time"

	"custody-core/internal/handler"
	"custody-core/internal/model"
	"custody-core/internal/server"
	"custody-core/internal/service"
	"custody-core/internal/service/mq"
	"custody-core/internal/service/scanner"
	"custody-core/internal/worker"

	"custody-core/pkg/cache"
	"custody-core/pkg/chains"
	"custody-core/pkg/config"
	"custody-core/pkg/database"
	"custody-core/pkg/logger"
	"custody-core/pkg/vault"

	"go.uber.org/zap"
)

// @title Custody Core API
// @version 1.0
// @description Custodial key management and deposit accounting service

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	// 2. 构造 DSN 并连接数据库
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		config.Global.DB.Host,
		config.Global.DB.User,
		config.Global.DB.Password,
		config.Global.DB.Name,
		config.Global.DB.Port,
	)
	db, err := database.ConnectPostgres(dsn)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3. 连接 Redis
	rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 4. 数据库迁移
	if config.Global.App.Env == "development" {
		logger.Info("开发环境: 尝试自动迁移 Schema (GORM AutoMigrate)...")
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("数据库自动迁移失败", zap.Error(err))
		}
		logger.Info("数据库自动迁移完成 (Dev Mode)")
	} else {
		logger.Info("生产环境: 跳过 AutoMigrate，请使用 migrate 工具管理 Schema")
	}

	// 5. 初始化密封库 (密封密钥缺失直接拒绝启动)
	sealVault, err := vault.New(config.Global.Vault.Secret)
	if err != nil {
		logger.Fatal("Vault 初始化失败，检查 VAULT_SECRET", zap.Error(err))
	}

	network := chains.Network(config.Global.App.Network)

	// 6. 业务服务
	// 地址缓存: L1 进程内 (go-cache) + L2 Redis
	addrCache := cache.NewMultiLevelCache(
		cache.NewMemoryCache(5*time.Minute, 10*time.Minute),
		cache.NewRedisCache(rdb),
	)
	masterKeyService := service.NewMasterKeyService(db, sealVault, network)
	allocatorService := service.NewAllocatorService(db, addrCache)

	// 7. 消息队列
	mqType := config.Global.Redis.MQType
	var producer mq.Producer
	if mqType == "kafka" {
		logger.Info("使用 Kafka 作为消息队列...")
		producer = mq.NewKafkaProducer(config.Global.Kafka.Brokers)
	} else {
		logger.Info("使用 Redis Streams 作为消息队列...")
		producer = mq.NewRedisProducer(rdb)
	}

	// 8. Worker 客户端 (入账通知任务)
	workerClient := worker.NewClient(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	defer workerClient.Close()

	// 9. 确认台账 + 各链扫描器
	ledger := scanner.NewLedger(db, workerClient)
	registry, err := scanner.BuildRegistry(db, network, config.Global.Chains, ledger)
	if err != nil {
		logger.Fatal("扫描器装配失败", zap.Error(err))
	}

	// 10. 消息中继 (Outbox -> MQ)
	relayService := service.NewRelayService(db, producer)
	go relayService.Start(context.Background())

	// 11. 定时扫描
	cronService := service.NewCronService(rdb, registry)
	cronService.Start()
	defer cronService.Stop()

	// 12. HTTP Router
	walletHandler := handler.NewWalletHandler(allocatorService)
	adminHandler := handler.NewAdminHandler(masterKeyService, registry)
	r := server.NewHTTPRouter(walletHandler, adminHandler)

	// 13. 启动应用
	app, err := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, r)
	if err != nil {
		logger.Fatal("应用启动失败", zap.Error(err))
	}
	app.Run()

	// 14. 退出后资源清理
	logger.Info("正在关闭数据库连接...")
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	rdb.Close()
	logger.Info("系统已退出")
}
