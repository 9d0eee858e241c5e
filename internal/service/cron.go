package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"custody-core/internal/service/scanner"
	"custody-core/pkg/config"
	"custody-core/pkg/logger"
	"custody-core/pkg/utils/lock"
)

// CronService 按配置的 cron 表达式调度各链扫描。
// 每个 (链, 资产) 一把 Redis 分布式锁，多实例部署时同一个扫描器
// 同时只有一个节点在跑。
type CronService struct {
	cron     *cron.Cron
	redis    *redis.Client
	registry *scanner.Registry
}

func NewCronService(rdb *redis.Client, registry *scanner.Registry) *CronService {
	return &CronService{
		cron:     cron.New(),
		redis:    rdb,
		registry: registry,
	}
}

func (s *CronService) Start() {
	for _, sc := range s.registry.All() {
		chain := sc.Chain()
		spec := "@every 1m"
		if cc, ok := config.Global.Chains[string(chain)]; ok && cc.ScanCron != "" {
			spec = cc.ScanCron
		}

		job := sc
		if _, err := s.cron.AddFunc(spec, func() { s.runScan(job) }); err != nil {
			logger.Error("注册扫描任务失败",
				zap.String("chain", string(chain)),
				zap.String("asset", sc.Asset()),
				zap.Error(err))
			continue
		}
		logger.Info("扫描任务已注册",
			zap.String("chain", string(chain)),
			zap.String("asset", sc.Asset()),
			zap.String("cron", spec))
	}

	s.cron.Start()
	logger.Info("Cron Service started")
}

func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	// 等在跑的任务收尾，最多 30s
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
	}
	logger.Info("Cron Service stopped")
}

func (s *CronService) runScan(sc *scanner.Scanner) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	lockKey := "cron:lock:scan:" + string(sc.Chain()) + ":" + sc.Asset()
	locker := lock.NewRedisLock(s.redis)
	locked, err := locker.Acquire(ctx, lockKey, 5*time.Minute)
	if err != nil || !locked {
		// 有其他节点在扫，跳过
		logger.Debug("扫描任务跳过，锁被占用", zap.String("lock", lockKey))
		return
	}
	defer locker.Release(ctx, lockKey)

	if _, err := sc.Scan(ctx); err != nil {
		logger.Error("定时扫描失败",
			zap.String("chain", string(sc.Chain())),
			zap.String("asset", sc.Asset()),
			zap.Error(err))
	}
}
