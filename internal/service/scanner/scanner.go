// Package scanner 实现链上充值的发现与确认记账。
//
// 每条链一个 Scanner，靠 Provider 接口对接不可信的链数据源。
// 发现和入账分两段: Record 把观察结果落成 pending 行，
// ConfirmPending 在确认数达标时做一次性的状态翻转并记账。
package scanner

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"custody-core/internal/model"
	"custody-core/pkg/chains"
	"custody-core/pkg/logger"
	"custody-core/pkg/monitor"
)

// TxObservation Provider 返回的一笔候选充值
type TxObservation struct {
	TxHash      string
	Address     string          // 命中的充值地址 (链上格式)
	Amount      decimal.Decimal // 基础单位整数
	BlockHeight uint64
	Failed      bool // 链上执行失败 (如 EVM revert)，只记档不入账
}

// Provider 链数据源。数据被视为不可信输入: 可能限流、超时、返回重复。
type Provider interface {
	// TipHeight 当前链顶高度
	TipHeight(ctx context.Context) (uint64, error)

	// AddressTransactions 地址在 (fromHeight, toHeight] 区间内收到的入账交易
	AddressTransactions(ctx context.Context, address string, fromHeight, toHeight uint64) ([]TxObservation, error)
}

// Summary 单次扫描的结果汇总
type Summary struct {
	Chain             string `json:"chain"`
	Asset             string `json:"asset"`
	TipHeight         uint64 `json:"tip_height"`
	AddressesScanned  int    `json:"addresses_scanned"`
	TransactionsFound int    `json:"transactions_found"`
	Errors            int    `json:"errors"`
}

// Config 单链扫描参数
type Config struct {
	Confirmations   uint64          // 入账确认数门槛
	DustFloor       decimal.Decimal // 基础单位的最小入账金额，小于它不落行
	BootstrapWindow uint64          // 无游标时回看的高度窗口
	MaxRetries      int             // Provider 调用重试次数
	RetryBackoff    time.Duration   // 首次重试间隔，指数退避
}

// Scanner 单链扫描器
type Scanner struct {
	chain    chains.Chain
	network  chains.Network
	asset    string
	db       *gorm.DB
	provider Provider
	ledger   *Ledger
	cfg      Config
}

func New(chain chains.Chain, network chains.Network, asset string, db *gorm.DB, provider Provider, ledger *Ledger, cfg Config) *Scanner {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	return &Scanner{
		chain:    chain,
		network:  network,
		asset:    asset,
		db:       db,
		provider: provider,
		ledger:   ledger,
		cfg:      cfg,
	}
}

func (s *Scanner) Chain() chains.Chain { return s.chain }

// Asset 该扫描器记账用的资产名 (原生币为链名，代币为配置的资产名)
func (s *Scanner) Asset() string { return s.asset }

// Scan 执行一轮扫描: 发现新充值、推进确认、入账达标交易。
// 单个地址的失败只计数不中断；出过错就不前移游标，下一轮重扫同一区间。
func (s *Scanner) Scan(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{Chain: string(s.chain), Asset: s.asset}

	tip, err := retry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func() (uint64, error) {
		return s.provider.TipHeight(ctx)
	})
	if err != nil {
		logger.Error("获取链顶高度失败", zap.String("chain", string(s.chain)), zap.Error(err))
		return nil, err
	}
	summary.TipHeight = tip

	cursor, err := s.loadCursor(ctx)
	if err != nil {
		return nil, err
	}
	from := scanFrom(cursor, tip, s.cfg.BootstrapWindow)

	var addresses []model.DepositAddress
	err = s.db.WithContext(ctx).
		Where("chain = ? AND network = ? AND active = ?", string(s.chain), string(s.network), true).
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}

	for i := range addresses {
		addr := &addresses[i]
		summary.AddressesScanned++

		observations, err := retry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func() ([]TxObservation, error) {
			return s.provider.AddressTransactions(ctx, addr.Address, from, tip)
		})
		if err != nil {
			summary.Errors++
			if monitor.Business != nil {
				monitor.Business.ScanErrorsTotal.WithLabelValues(string(s.chain)).Inc()
			}
			logger.Warn("地址扫描失败，跳过",
				zap.String("chain", string(s.chain)),
				zap.String("address", addr.Address),
				zap.Error(err))
			continue
		}

		for _, ob := range observations {
			// 入账资产以扫描器为准: 扫描器知道自己盯的是原生币还是哪个合约，
			// 地址行上的 Asset 只是分配时的记账标注
			recorded, err := s.ledger.Record(ctx, addr, ob, s.asset, s.cfg.Confirmations, s.cfg.DustFloor)
			if err != nil {
				summary.Errors++
				logger.Error("充值落库失败",
					zap.String("chain", string(s.chain)),
					zap.String("tx_hash", ob.TxHash),
					zap.Error(err))
				continue
			}
			if recorded {
				summary.TransactionsFound++
			}
		}
	}

	if _, err := s.ledger.ConfirmPending(ctx, s.chain, s.network, s.asset, tip); err != nil {
		summary.Errors++
		logger.Error("确认阶段失败", zap.String("chain", string(s.chain)), zap.Error(err))
	}

	// 游标只在本轮无错时前移，保证漏扫区间会被重扫。
	// 重复观察由 (chain, network, tx_hash, address) 唯一键天然吸收。
	if summary.Errors == 0 {
		if err := s.saveCursor(ctx, tip); err != nil {
			logger.Error("保存扫描游标失败", zap.String("chain", string(s.chain)), zap.Error(err))
		} else if monitor.Business != nil {
			monitor.Business.ScanCursorHeight.WithLabelValues(string(s.chain)).Set(float64(tip))
		}
	}

	if monitor.Business != nil {
		monitor.Business.ScanDuration.WithLabelValues(string(s.chain)).Observe(time.Since(start).Seconds())
	}
	logger.Info("扫描完成",
		zap.String("chain", string(s.chain)),
		zap.String("asset", s.asset),
		zap.Uint64("tip", tip),
		zap.Int("addresses", summary.AddressesScanned),
		zap.Int("found", summary.TransactionsFound),
		zap.Int("errors", summary.Errors))
	return summary, nil
}

func (s *Scanner) loadCursor(ctx context.Context) (uint64, error) {
	var progress model.ChainProgress
	err := s.db.WithContext(ctx).
		Where("chain = ? AND network = ? AND asset = ?", string(s.chain), string(s.network), s.asset).
		First(&progress).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return progress.LastHeight, nil
}

func (s *Scanner) saveCursor(ctx context.Context, height uint64) error {
	var progress model.ChainProgress
	err := s.db.WithContext(ctx).
		Where("chain = ? AND network = ? AND asset = ?", string(s.chain), string(s.network), s.asset).
		First(&progress).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.WithContext(ctx).Create(&model.ChainProgress{
			Chain:      string(s.chain),
			Network:    string(s.network),
			Asset:      s.asset,
			LastHeight: height,
		}).Error
	}
	if err != nil {
		return err
	}
	if height <= progress.LastHeight {
		// 游标只进不退
		return nil
	}
	return s.db.WithContext(ctx).Model(&progress).Update("last_height", height).Error
}

// scanFrom 计算本轮扫描的起始高度。
// 有游标接着扫；无游标只回看 window 个区块，不做全量回放。
func scanFrom(cursor, tip, window uint64) uint64 {
	if cursor > 0 {
		return cursor
	}
	if window == 0 || tip <= window {
		return 0
	}
	return tip - window
}

// confirmations 含首块的确认数；链顶未到该高度时为 0
func confirmations(tip, blockHeight uint64) uint64 {
	if blockHeight == 0 || tip < blockHeight {
		return 0
	}
	return tip - blockHeight + 1
}

// retry 有界指数退避。context 取消立即放弃。
func retry[T any](ctx context.Context, attempts int, backoff time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff << (i - 1)):
			}
		}
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("重试次数耗尽")
	}
	return zero, lastErr
}
