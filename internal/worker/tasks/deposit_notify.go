package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"custody-core/internal/event"
	"custody-core/pkg/logger"
)

// 任务类型常量
const (
	TypeDepositNotify = "deposit:notify"
)

// NewDepositNotifyTask 创建入账通知任务
// 任务体直接复用入账事件结构，金额为基础单位整数串
func NewDepositNotifyTask(evt *event.DepositCreditedEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	// 最多重试 5 次；通知不是关键路径，10 分钟内送达即可
	return asynq.NewTask(TypeDepositNotify, payload,
		asynq.MaxRetry(5),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("default"),
	), nil
}

// HandleDepositNotifyTask 处理入账通知
// 下游 (站内信 / webhook) 必须按 deposit_id 幂等，任务可能重复投递
func HandleDepositNotifyTask(ctx context.Context, t *asynq.Task) error {
	var evt event.DepositCreditedEvent
	if err := json.Unmarshal(t.Payload(), &evt); err != nil {
		// JSON 解析失败，重试也没用，进 Archived 队列排查
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	logger.Info("推送入账通知",
		zap.Uint64("deposit_id", evt.DepositID),
		zap.Uint64("user_id", evt.UserID),
		zap.String("chain", evt.Chain),
		zap.String("asset", evt.Asset),
		zap.String("amount", evt.Amount),
	)

	// 这里接通知渠道 (站内信 / push / webhook)；当前只落结构化日志
	return nil
}
