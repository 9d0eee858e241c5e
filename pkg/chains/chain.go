package chains

import (
	"errors"
	"fmt"

	"custody-core/pkg/hdkey"
)

// Chain 支持的链家族。封闭集合：加链 = 新增一个 Descriptor 实现并注册。
type Chain string

const (
	ChainETH Chain = "ETH" // EVM 系 (以及其上的 ERC-20)
	ChainBTC Chain = "BTC" // UTXO 系，原生隔离见证
	ChainTRX Chain = "TRX" // Tron (以及 TRC-20)
	ChainXRP Chain = "XRP" // 账本式账户链
	ChainADA Chain = "ADA" // 带质押的 UTXO 链 (CIP-1852)
)

// Network 网络环境
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

var (
	ErrUnsupportedChain = errors.New("不支持的链")
	ErrMissingXPub      = errors.New("缺少必需的扩展公钥")
)

// MaxAccount 硬化派生允许的最大账户号 (BIP32 索引高位是硬化标志)
const MaxAccount = 1<<31 - 1

// Root 一条链的账户级公钥材料。
// 常规链只有 AccountXPub；ADA 额外携带 external / stake 两条链级 xpub，
// 这样地址分配只做非硬化派生，永远不碰私钥。
type Root struct {
	AccountXPub  string
	ExternalXPub string // 仅 ADA
	StakeXPub    string // 仅 ADA
}

// Address 派生结果
type Address struct {
	Address      string
	StakeAddress string // 仅 ADA：对应的 reward/质押地址
}

// Descriptor 单链的派生与编码规则。
// 每条链一个实现，集中该链全部特殊性 (路径、哈希、编码)。
type Descriptor interface {
	// Chain 返回链标识
	Chain() Chain

	// AccountPath 账户级硬化路径。account 是用户专属的硬化账户号:
	// 每个用户一棵独立的密钥树，任何两个用户不会派生出同一个地址。
	AccountPath(network Network, account uint32) string

	// DeriveRoot 从主钱包 (持有私钥) 派生 account 号账户的公钥材料。
	// 仅在钱包根初始化时调用一次，之后助记词不再需要。
	DeriveRoot(wallet *hdkey.Wallet, network Network, account uint32) (*Root, error)

	// DeriveAddress 只用 Root 里的公钥材料派生第 index 个收款地址。
	DeriveAddress(root *Root, index uint32, network Network) (*Address, error)
}

var registry = map[Chain]Descriptor{
	ChainETH: &ETHDescriptor{},
	ChainBTC: &BTCDescriptor{},
	ChainTRX: &TRXDescriptor{},
	ChainXRP: &XRPDescriptor{},
	ChainADA: &ADADescriptor{},
}

// ForChain 返回链对应的 Descriptor
func ForChain(chain Chain) (Descriptor, error) {
	d, ok := registry[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedChain, chain)
	}
	return d, nil
}

// Supported 返回全部支持的链 (顺序固定，方便遍历)
func Supported() []Chain {
	return []Chain{ChainETH, ChainBTC, ChainTRX, ChainXRP, ChainADA}
}

// IsSupported 判断链是否在封闭集合内
func IsSupported(chain Chain) bool {
	_, ok := registry[chain]
	return ok
}

// deriveChild 公共辅助：从 xpub 串派生 chainIndex/index 两级非硬化子公钥
func deriveChild(xpub string, chainIndex, index uint32) (hdkey.ExtendedKey, error) {
	if xpub == "" {
		return nil, ErrMissingXPub
	}
	account, err := hdkey.ParseExtendedKey(xpub)
	if err != nil {
		return nil, err
	}
	chainKey, err := account.Derive(chainIndex)
	if err != nil {
		return nil, fmt.Errorf("派生子密钥失败 (chain): %w", err)
	}
	child, err := chainKey.Derive(index)
	if err != nil {
		return nil, fmt.Errorf("派生子密钥失败 (index): %w", err)
	}
	return child, nil
}

// deriveAccountXPub 公共辅助：硬化派生到账户级并 Neuter
func deriveAccountXPub(wallet *hdkey.Wallet, path string) (string, error) {
	account, err := wallet.DerivePath(path)
	if err != nil {
		return "", fmt.Errorf("派生账户密钥失败 (%s): %w", path, err)
	}
	pub, err := account.Neuter()
	if err != nil {
		return "", err
	}
	return pub.String(), nil
}
