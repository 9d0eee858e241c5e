package service

import (
	"context"

	"custody-core/internal/model"
	"custody-core/pkg/chains"
)

// AllocateParams 地址分配请求
type AllocateParams struct {
	Chain          chains.Chain
	Network        chains.Network
	Asset          string
	IdempotencyKey string
}

// AllocationResult 分配结果；幂等重试必须返回逐字节一致的内容
type AllocationResult struct {
	Address        string `json:"address"`
	StakeAddress   string `json:"stake_address,omitempty"`
	DerivationPath string `json:"derivation_path"`
	AddressIndex   uint32 `json:"address_index"`
}

// AddressAllocator 充值地址分配
type AddressAllocator interface {
	// Allocate 获取或复用 (user, chain, network) 的充值地址
	// 幂等键必填；同键重试返回先前结果
	Allocate(ctx context.Context, userID uint64, params AllocateParams) (*AllocationResult, error)
}

// MasterKeys 主密钥管理 (特权接口)
type MasterKeys interface {
	// Generate 生成并加密存档新助记词；明文只在本次调用返回一次
	Generate(ctx context.Context) (*model.MasterKey, string, error)

	// Decrypt 解出明文助记词 (仅限内部特权调用方)
	Decrypt(ctx context.Context, keyID string) (string, error)

	// Verify 抽查若干单词位置核对备份；不落任何明文日志
	Verify(ctx context.Context, keyID string, positions []int, words []string) (bool, error)

	// InitWalletRoots 从主密钥为用户按链初始化 WalletRoot；绝不返回助记词
	InitWalletRoots(ctx context.Context, keyID string, userID uint64, targets []chains.Chain) ([]model.WalletRoot, error)
}
