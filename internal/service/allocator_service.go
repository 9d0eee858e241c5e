package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"custody-core/internal/model"
	"custody-core/pkg/cache"
	"custody-core/pkg/chains"
	"custody-core/pkg/crypto_util"
	"custody-core/pkg/errno"
	"custody-core/pkg/logger"
	"custody-core/pkg/monitor"
)

// AllocatorService 充值地址分配
// 三道防线: 幂等键表、(user, chain, network) 业务唯一键、
// wallet_roots.next_index 上的单条原子自增
type AllocatorService struct {
	db    *gorm.DB
	cache cache.Cache // 可为 nil；已分配地址不会变，适合长 TTL 缓存
}

func NewAllocatorService(db *gorm.DB, c cache.Cache) *AllocatorService {
	return &AllocatorService{db: db, cache: c}
}

const allocCacheTTL = time.Hour

func allocCacheKey(userID uint64, chain chains.Chain, network chains.Network) string {
	return fmt.Sprintf("alloc:addr:%d:%s:%s", userID, chain, network)
}

var _ AddressAllocator = (*AllocatorService)(nil)

// Allocate 获取或复用用户的充值地址。
// 同一 (user, chain, network) 永远只有一个活跃地址；
// 同一幂等键重试返回与首次完全一致的结果。
func (s *AllocatorService) Allocate(ctx context.Context, userID uint64, params AllocateParams) (*AllocationResult, error) {
	if params.IdempotencyKey == "" {
		return nil, errno.ErrIdempotencyKeyEmpty
	}
	if !chains.IsSupported(params.Chain) {
		return nil, errno.ErrUnsupportedChain
	}

	fingerprint := requestFingerprint(userID, params)

	idem := &model.IdempotencyRequest{
		UserID:         userID,
		IdempotencyKey: params.IdempotencyKey,
		Fingerprint:    fingerprint,
		Status:         model.IdempotencyStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(idem).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.replayIdempotent(ctx, userID, params.IdempotencyKey, fingerprint)
		}
		return nil, errno.ErrDatabase
	}

	result, allocErr := s.allocate(ctx, userID, params)
	if allocErr != nil {
		// 失败也要落档，重试同一个键拿到同样的失败
		code, msg := errno.Decode(allocErr)
		s.db.WithContext(ctx).Model(idem).Updates(map[string]interface{}{
			"status":      model.IdempotencyStatusFailed,
			"fail_code":   code,
			"fail_reason": msg,
		})
		return nil, allocErr
	}

	if err := s.db.WithContext(ctx).Model(idem).Updates(map[string]interface{}{
		"status":             model.IdempotencyStatusCompleted,
		"deposit_address_id": result.addressID,
	}).Error; err != nil {
		logger.Error("幂等记录收尾失败", zap.Uint64("user_id", userID), zap.Error(err))
	}
	return result.AllocationResult, nil
}

// allocResult 内部分配结果，附带行 ID 供幂等记录引用
type allocResult struct {
	*AllocationResult
	addressID uint64
}

// cachedAllocation 缓存里的分配结果 (JSON 可序列化)
type cachedAllocation struct {
	Result    AllocationResult `json:"result"`
	AddressID uint64           `json:"address_id"`
}

func (s *AllocatorService) fillCache(ctx context.Context, userID uint64, params AllocateParams, record *model.DepositAddress) {
	if s.cache == nil {
		return
	}
	entry := cachedAllocation{Result: *toResult(record), AddressID: record.ID}
	if err := s.cache.Set(ctx, allocCacheKey(userID, params.Chain, params.Network), entry, allocCacheTTL); err != nil {
		logger.Warn("地址缓存写入失败", zap.Uint64("user_id", userID), zap.Error(err))
	}
}

func (s *AllocatorService) allocate(ctx context.Context, userID uint64, params AllocateParams) (*allocResult, error) {
	// 业务复用: 该账户链上已有活跃地址就直接还给调用方
	if s.cache != nil {
		var cached cachedAllocation
		if err := s.cache.Get(ctx, allocCacheKey(userID, params.Chain, params.Network), &cached); err == nil && cached.AddressID != 0 {
			return &allocResult{AllocationResult: &cached.Result, addressID: cached.AddressID}, nil
		}
	}

	var existing model.DepositAddress
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND chain = ? AND network = ? AND active = ?",
			userID, string(params.Chain), string(params.Network), true).
		First(&existing).Error
	if err == nil {
		s.fillCache(ctx, userID, params, &existing)
		return &allocResult{AllocationResult: toResult(&existing), addressID: existing.ID}, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, errno.ErrDatabase
	}

	var root model.WalletRoot
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND chain = ? AND network = ? AND active = ?",
			userID, string(params.Chain), string(params.Network), true).
		First(&root).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errno.ErrWalletNotInitialized
		}
		return nil, errno.ErrDatabase
	}

	desc, err := chains.ForChain(params.Chain)
	if err != nil {
		return nil, errno.ErrUnsupportedChain
	}

	var record model.DepositAddress
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 原子占号: 单条 UPDATE 自增并取回，索引在并发下也不会发两次
		var next uint32
		err := tx.Raw(
			"UPDATE wallet_roots SET next_index = next_index + 1, updated_at = NOW() WHERE id = ? RETURNING next_index",
			root.ID,
		).Scan(&next).Error
		if err != nil {
			return err
		}
		index := next - 1

		addr, err := desc.DeriveAddress(&chains.Root{
			AccountXPub:  root.AccountXPub,
			ExternalXPub: root.ExternalXPub,
			StakeXPub:    root.StakeXPub,
		}, index, params.Network)
		if err != nil {
			return err
		}

		record = model.DepositAddress{
			UserID:         userID,
			Chain:          string(params.Chain),
			Network:        string(params.Network),
			Asset:          params.Asset,
			Address:        addr.Address,
			StakeAddress:   addr.StakeAddress,
			DerivationPath: fmt.Sprintf("%s/0/%d", root.PathTemplate, index),
			WalletRootID:   root.ID,
			AddressIndex:   index,
			Scheme:         "structured",
			Active:         true,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发下对手方先建好了，读回它的地址 (号段被浪费一个，可接受)
			if reErr := s.db.WithContext(ctx).
				Where("user_id = ? AND chain = ? AND network = ? AND active = ?",
					userID, string(params.Chain), string(params.Network), true).
				First(&record).Error; reErr == nil {
				return &allocResult{AllocationResult: toResult(&record), addressID: record.ID}, nil
			}
		}
		logger.Error("地址分配失败",
			zap.Uint64("user_id", userID),
			zap.String("chain", string(params.Chain)),
			zap.Error(err))
		return nil, errno.ErrAllocationFailed
	}

	if monitor.Business != nil {
		monitor.Business.AddressAllocatedTotal.WithLabelValues(string(params.Chain)).Inc()
	}
	logger.Info("充值地址已分配",
		zap.Uint64("user_id", userID),
		zap.String("chain", string(params.Chain)),
		zap.Uint32("index", record.AddressIndex))
	s.fillCache(ctx, userID, params, &record)
	return &allocResult{AllocationResult: toResult(&record), addressID: record.ID}, nil
}

// replayIdempotent 幂等键已存在时的回放路径
func (s *AllocatorService) replayIdempotent(ctx context.Context, userID uint64, key, fingerprint string) (*AllocationResult, error) {
	var idem model.IdempotencyRequest
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&idem).Error; err != nil {
		return nil, errno.ErrDatabase
	}

	// 同键不同请求体: 拒绝，而不是把别的请求的地址静默还回去
	if idem.Fingerprint != fingerprint {
		return nil, errno.ErrIdempotencyConflict
	}

	switch idem.Status {
	case model.IdempotencyStatusCompleted:
		if idem.DepositAddressID == nil {
			return nil, errno.ErrAddressNotFound
		}
		var record model.DepositAddress
		if err := s.db.WithContext(ctx).First(&record, *idem.DepositAddressID).Error; err != nil {
			return nil, errno.ErrAddressNotFound
		}
		return toResult(&record), nil
	case model.IdempotencyStatusFailed:
		return nil, replayFailure(&idem)
	default:
		return nil, errno.ErrIdempotencyPending
	}
}

// replayFailure 还原首次失败的结构化错误，比如 "wallet not initialized"。
// 早期记录没有 fail_code，退化成通用的分配失败。
func replayFailure(idem *model.IdempotencyRequest) error {
	if idem.FailCode == 0 {
		return errno.ErrAllocationFailed
	}
	return errno.Errno{Code: idem.FailCode, Message: idem.FailReason}
}

// requestFingerprint 请求体指纹，用于识别幂等键复用冲突
func requestFingerprint(userID uint64, params AllocateParams) string {
	canonical := fmt.Sprintf("%d|%s|%s|%s", userID, params.Chain, params.Network, params.Asset)
	return crypto_util.Fingerprint([]byte(canonical))
}

func toResult(record *model.DepositAddress) *AllocationResult {
	return &AllocationResult{
		Address:        record.Address,
		StakeAddress:   record.StakeAddress,
		DerivationPath: record.DerivationPath,
		AddressIndex:   record.AddressIndex,
	}
}
