package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"custody-core/internal/event"
	"custody-core/internal/service/mq"
	"custody-core/internal/worker"
	"custody-core/pkg/config"
	"custody-core/pkg/database"
	"custody-core/pkg/logger"

	"go.uber.org/zap"
)

// notify-worker 独立运行的通知消费端。
// 两条入口: asynq 任务队列 (入账后直接入队) 和 MQ 上的入账事件
// (Outbox 中继投递，at-least-once)。两边都按 deposit_id 幂等。
func main() {
	// 1. 初始化配置与日志
	config.Init()
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	logger.Info("启动通知服务 (Notify Worker)...", zap.String("env", config.Global.App.Env))

	// 2. 初始化 Redis
	rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 3. 启动 asynq Worker
	workerServer := worker.NewServer(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB, 10)
	workerServer.Start()

	// 4. 初始化 MQ Consumer
	var consumer mq.Consumer
	if config.Global.Redis.MQType == "kafka" {
		logger.Info("MQ Mode: Kafka Consumer", zap.Strings("brokers", config.Global.Kafka.Brokers))
		consumer = mq.NewKafkaConsumer(config.Global.Kafka.Brokers, "notify-group")
	} else {
		logger.Info("MQ Mode: Redis Consumer")
		consumer = mq.NewRedisConsumer(rdb, "notify-group", "worker-1")
	}

	// 5. 订阅入账事件 (审计日志 / 下游扇出)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		logger.Info("开始监听入账事件", zap.String("topic", mq.TopicDepositCredited))
		if err := consumer.Subscribe(ctx, mq.TopicDepositCredited, handleDepositCredited); err != nil {
			logger.Fatal("订阅失败", zap.Error(err))
		}
	}()

	// 6. 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在停止通知服务...")
	cancel()
	_ = consumer.Close()
	workerServer.Stop()
	time.Sleep(2 * time.Second)
	logger.Info("通知服务已停止")
}

func handleDepositCredited(msg *mq.Message) error {
	var evt event.DepositCreditedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		logger.Error("解析入账事件失败", zap.Error(err))
		return nil // 格式错误，重试没有意义
	}

	// 入账审计轨迹；真正的用户触达走 asynq 任务
	logger.Info("入账事件",
		zap.Uint64("deposit_id", evt.DepositID),
		zap.Uint64("user_id", evt.UserID),
		zap.String("chain", evt.Chain),
		zap.String("asset", evt.Asset),
		zap.String("tx_hash", evt.TxHash),
		zap.String("amount", evt.Amount))
	return nil
}
