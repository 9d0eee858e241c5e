package scanner

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"custody-core/internal/event"
	"custody-core/internal/model"
	"custody-core/internal/service/mq"
	"custody-core/pkg/chains"
	"custody-core/pkg/logger"
	"custody-core/pkg/monitor"
)

// Notifier 入账之后的异步通知 (由 worker 客户端实现)
type Notifier interface {
	EnqueueDepositCredited(ctx context.Context, evt *event.DepositCreditedEvent) error
}

// Ledger 确认台账。
// 唯一键 (chain, network, tx_hash, address) 保证同一笔链上交易只有一行，
// pending -> confirmed 的翻转用条件更新做闸门，入账、事件、通知都只挂在
// RowsAffected == 1 的那一次上。
type Ledger struct {
	db       *gorm.DB
	notifier Notifier // 可为 nil
}

func NewLedger(db *gorm.DB, notifier Notifier) *Ledger {
	return &Ledger{db: db, notifier: notifier}
}

// Record 把一笔观察结果落成台账行。
// asset 由扫描器传入: 同一个地址上原生币和代币由不同扫描器各自记账，
// 地址行上的 Asset 标注不参与入账。
// 低于尘埃线的金额直接丢弃；重复观察命中唯一键后静默吸收。
// 返回是否新建了行。
func (l *Ledger) Record(ctx context.Context, addr *model.DepositAddress, ob TxObservation, asset string, required uint64, dustFloor decimal.Decimal) (bool, error) {
	if ob.Amount.LessThanOrEqual(decimal.Zero) {
		return false, nil
	}
	if !dustFloor.IsZero() && ob.Amount.LessThan(dustFloor) {
		return false, nil
	}

	status := model.DepositStatusPending
	if ob.Failed {
		// 链上执行失败的交易留档但永不入账
		status = model.DepositStatusRejected
	}

	row := model.DepositTransaction{
		UserID:                addr.UserID,
		Chain:                 addr.Chain,
		Network:               addr.Network,
		Asset:                 asset,
		TxHash:                ob.TxHash,
		Address:               addr.Address,
		Amount:                ob.Amount,
		BlockHeight:           ob.BlockHeight,
		RequiredConfirmations: required,
		Status:                status,
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if row.Status != model.DepositStatusPending {
			return nil
		}
		evt := &event.DepositObservedEvent{
			DepositID:     row.ID,
			UserID:        row.UserID,
			Chain:         row.Chain,
			TxHash:        row.TxHash,
			Amount:        row.Amount.String(),
			Confirmations: row.Confirmations,
			Required:      row.RequiredConfirmations,
		}
		return model.CreateOutboxMessage(tx, mq.TopicDepositPending, strconv.FormatUint(row.UserID, 10), evt)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}

	if monitor.Business != nil {
		monitor.Business.DepositObservedTotal.WithLabelValues(addr.Chain).Inc()
	}
	logger.Info("发现新充值",
		zap.String("chain", addr.Chain),
		zap.String("asset", asset),
		zap.String("tx_hash", ob.TxHash),
		zap.Uint64("user_id", addr.UserID),
		zap.String("status", status))
	return true, nil
}

// ConfirmPending 推进某资产全部 pending 行的确认数，达标的入账。
// 返回本轮入账的笔数。
func (l *Ledger) ConfirmPending(ctx context.Context, chain chains.Chain, network chains.Network, asset string, tip uint64) (int, error) {
	var rows []model.DepositTransaction
	err := l.db.WithContext(ctx).
		Where("chain = ? AND network = ? AND asset = ? AND status = ?",
			string(chain), string(network), asset, model.DepositStatusPending).
		Find(&rows).Error
	if err != nil {
		return 0, err
	}

	credited := 0
	for i := range rows {
		row := &rows[i]
		conf := confirmations(tip, row.BlockHeight)

		if conf < row.RequiredConfirmations {
			if conf != row.Confirmations {
				l.db.WithContext(ctx).Model(row).Update("confirmations", conf)
			}
			continue
		}

		done, err := l.credit(ctx, row, conf)
		if err != nil {
			logger.Error("入账失败",
				zap.String("chain", row.Chain),
				zap.String("tx_hash", row.TxHash),
				zap.Error(err))
			continue
		}
		if done {
			credited++
		}
	}
	return credited, nil
}

// credit 单笔入账: 状态翻转、余额增加、Outbox 事件在同一个事务里提交。
// 条件更新打空 (并发翻转已发生) 则整体跳过，保证恰好一次。
func (l *Ledger) credit(ctx context.Context, row *model.DepositTransaction, conf uint64) (bool, error) {
	var flipped bool
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&model.DepositTransaction{}).
			Where("id = ? AND status = ?", row.ID, model.DepositStatusPending).
			Updates(map[string]interface{}{
				"status":        model.DepositStatusConfirmed,
				"confirmations": conf,
				"confirmed_at":  now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		flipped = true

		if err := creditAccount(tx, row.UserID, row.Asset, row.Amount); err != nil {
			return err
		}

		evt := &event.DepositCreditedEvent{
			DepositID: row.ID,
			UserID:    row.UserID,
			Chain:     row.Chain,
			Network:   row.Network,
			Asset:     row.Asset,
			Address:   row.Address,
			TxHash:    row.TxHash,
			Amount:    row.Amount.String(),
		}
		return model.CreateOutboxMessage(tx, mq.TopicDepositCredited, strconv.FormatUint(row.UserID, 10), evt)
	})
	if err != nil || !flipped {
		return false, err
	}

	if monitor.Business != nil {
		monitor.Business.DepositCreditedTotal.WithLabelValues(row.Chain).Inc()
		amt, _ := row.Amount.Float64()
		monitor.Business.DepositCreditedAmount.WithLabelValues(row.Chain, row.Asset).Add(amt)
	}

	// 异步通知尽力而为；失败不回滚入账，靠 Outbox 事件兜底
	if l.notifier != nil {
		evt := &event.DepositCreditedEvent{
			DepositID: row.ID,
			UserID:    row.UserID,
			Chain:     row.Chain,
			Network:   row.Network,
			Asset:     row.Asset,
			Address:   row.Address,
			TxHash:    row.TxHash,
			Amount:    row.Amount.String(),
		}
		if err := l.notifier.EnqueueDepositCredited(ctx, evt); err != nil {
			logger.Warn("入账通知入队失败", zap.Uint64("deposit_id", row.ID), zap.Error(err))
		}
	}

	logger.Info("充值已入账",
		zap.String("chain", row.Chain),
		zap.String("tx_hash", row.TxHash),
		zap.Uint64("user_id", row.UserID),
		zap.String("amount", row.Amount.String()))
	return true, nil
}

// creditAccount 余额增加。先试原子 UPDATE，账户不存在再插入。
func creditAccount(tx *gorm.DB, userID uint64, asset string, amount decimal.Decimal) error {
	res := tx.Model(&model.Account{}).
		Where("user_id = ? AND asset = ?", userID, asset).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance + ?", amount),
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	err := tx.Create(&model.Account{
		UserID:  userID,
		Asset:   asset,
		Balance: amount,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发首充，退回原子 UPDATE
		return tx.Model(&model.Account{}).
			Where("user_id = ? AND asset = ?", userID, asset).
			Updates(map[string]interface{}{
				"balance": gorm.Expr("balance + ?", amount),
				"version": gorm.Expr("version + 1"),
			}).Error
	}
	return err
}
