package scanner

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"custody-core/pkg/chains"
	"custody-core/pkg/config"
	"custody-core/pkg/logger"
)

// Registry 全部已装配的扫描器，一条链可以挂多个 (原生币 + 各代币各一个)
type Registry struct {
	scanners map[chains.Chain][]*Scanner
}

// BuildRegistry 按配置装配扫描器，链上每个资产一个。
// 没配 provider_url 的链跳过并告警，不算致命错误。
func BuildRegistry(db *gorm.DB, network chains.Network, chainConfigs map[string]config.ChainConfig, ledger *Ledger) (*Registry, error) {
	registry := &Registry{scanners: make(map[chains.Chain][]*Scanner)}

	for _, chain := range chains.Supported() {
		cc, ok := chainConfigs[string(chain)]
		if !ok || cc.ProviderURL == "" {
			logger.Warn("链未配置数据源，跳过扫描器", zap.String("chain", string(chain)))
			continue
		}

		assets := cc.Assets
		if len(assets) == 0 {
			// 没有 assets 列表时只扫原生币
			assets = []config.AssetConfig{{Asset: string(chain), DustFloor: cc.DustFloor}}
		}

		for _, ac := range assets {
			if ac.Asset == "" {
				ac.Asset = string(chain)
			}

			provider, err := buildProvider(chain, cc, ac)
			if err != nil {
				return nil, fmt.Errorf("装配 %s/%s 数据源失败: %w", chain, ac.Asset, err)
			}

			floor := ac.DustFloor
			if floor == "" {
				floor = cc.DustFloor
			}
			dustFloor := decimal.Zero
			if floor != "" {
				dustFloor, err = decimal.NewFromString(floor)
				if err != nil {
					return nil, fmt.Errorf("%s/%s 尘埃线配置无效: %w", chain, ac.Asset, err)
				}
			}

			registry.scanners[chain] = append(registry.scanners[chain],
				New(chain, network, ac.Asset, db, provider, ledger, Config{
					Confirmations:   cc.Confirmations,
					DustFloor:       dustFloor,
					BootstrapWindow: cc.BootstrapWindow,
					MaxRetries:      3,
					RetryBackoff:    time.Second,
				}))
		}
	}
	return registry, nil
}

func buildProvider(chain chains.Chain, cc config.ChainConfig, ac config.AssetConfig) (Provider, error) {
	switch chain {
	case chains.ChainETH:
		return NewEVMProvider(cc.ProviderURL, ac.TokenContract)
	case chains.ChainTRX:
		return NewTRXProvider(cc.ProviderURL, cc.APIKey, ac.TokenContract), nil
	}

	if ac.TokenContract != "" {
		return nil, fmt.Errorf("%s 不支持合约资产", chain)
	}
	switch chain {
	case chains.ChainBTC:
		return NewBTCProvider(cc.ProviderURL), nil
	case chains.ChainXRP:
		return NewXRPProvider(cc.ProviderURL), nil
	case chains.ChainADA:
		return NewADAProvider(cc.ProviderURL, cc.APIKey), nil
	default:
		return nil, chains.ErrUnsupportedChain
	}
}

// Get 取某条链的全部扫描器
func (r *Registry) Get(chain chains.Chain) []*Scanner {
	return r.scanners[chain]
}

// All 返回全部扫描器 (顺序固定)
func (r *Registry) All() []*Scanner {
	var out []*Scanner
	for _, chain := range chains.Supported() {
		out = append(out, r.scanners[chain]...)
	}
	return out
}
