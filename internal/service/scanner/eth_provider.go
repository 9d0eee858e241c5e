package scanner

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

// erc20TransferTopic keccak256("Transfer(address,address,uint256)")
var erc20TransferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// EVMProvider 基于 go-ethereum RPC 的数据源。
// 原生币走逐块遍历，同一高度区间的块只拉一次、按收款地址缓存；
// 配置了 token 合约时改走 ERC-20 Transfer 日志过滤。
type EVMProvider struct {
	client   *ethclient.Client
	token    common.Address
	hasToken bool

	mu        sync.Mutex
	cacheFrom uint64
	cacheTo   uint64
	cache     map[common.Address][]TxObservation
}

func NewEVMProvider(rawurl string, tokenContract string) (*EVMProvider, error) {
	client, err := ethclient.Dial(rawurl)
	if err != nil {
		return nil, fmt.Errorf("连接 EVM 节点失败: %w", err)
	}
	p := &EVMProvider{client: client}
	if tokenContract != "" {
		p.token = common.HexToAddress(tokenContract)
		p.hasToken = true
	}
	return p, nil
}

func (p *EVMProvider) TipHeight(ctx context.Context) (uint64, error) {
	return p.client.BlockNumber(ctx)
}

func (p *EVMProvider) AddressTransactions(ctx context.Context, address string, fromHeight, toHeight uint64) ([]TxObservation, error) {
	if toHeight <= fromHeight {
		return nil, nil
	}
	if p.hasToken {
		return p.tokenTransfers(ctx, address, fromHeight, toHeight)
	}
	return p.nativeTransfers(ctx, address, fromHeight, toHeight)
}

// tokenTransfers 过滤打到该地址的 ERC-20 Transfer 日志。
// 日志只在交易成功时产生，无需再查回执。
func (p *EVMProvider) tokenTransfers(ctx context.Context, address string, fromHeight, toHeight uint64) ([]TxObservation, error) {
	recipient := common.BytesToHash(common.LeftPadBytes(common.HexToAddress(address).Bytes(), 32))
	logs, err := p.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromHeight + 1),
		ToBlock:   new(big.Int).SetUint64(toHeight),
		Addresses: []common.Address{p.token},
		Topics:    [][]common.Hash{{erc20TransferTopic}, nil, {recipient}},
	})
	if err != nil {
		return nil, err
	}

	out := make([]TxObservation, 0, len(logs))
	for _, lg := range logs {
		if lg.Removed {
			continue
		}
		amount := new(big.Int).SetBytes(lg.Data)
		out = append(out, TxObservation{
			TxHash:      lg.TxHash.Hex(),
			Address:     address,
			Amount:      decimal.NewFromBigInt(amount, 0),
			BlockHeight: lg.BlockNumber,
		})
	}
	return out, nil
}

func (p *EVMProvider) nativeTransfers(ctx context.Context, address string, fromHeight, toHeight uint64) ([]TxObservation, error) {
	if err := p.ensureRange(ctx, fromHeight, toHeight); err != nil {
		return nil, err
	}

	p.mu.Lock()
	hits := append([]TxObservation(nil), p.cache[common.HexToAddress(address)]...)
	p.mu.Unlock()

	for i := range hits {
		hits[i].Address = address
		// revert 的转账不能入账，命中后补查回执
		receipt, err := p.client.TransactionReceipt(ctx, common.HexToHash(hits[i].TxHash))
		if err != nil {
			return nil, err
		}
		hits[i].Failed = receipt.Status != types.ReceiptStatusSuccessful
	}
	return hits, nil
}

// ensureRange 拉取 (from, to] 区间内的全部区块并按收款地址建立索引
func (p *EVMProvider) ensureRange(ctx context.Context, fromHeight, toHeight uint64) error {
	p.mu.Lock()
	if p.cache != nil && p.cacheFrom == fromHeight && p.cacheTo == toHeight {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	index := make(map[common.Address][]TxObservation)
	for h := fromHeight + 1; h <= toHeight; h++ {
		block, err := p.client.BlockByNumber(ctx, new(big.Int).SetUint64(h))
		if err != nil {
			return err
		}
		for _, tx := range block.Transactions() {
			to := tx.To()
			if to == nil || tx.Value().Sign() <= 0 {
				continue
			}
			index[*to] = append(index[*to], TxObservation{
				TxHash:      tx.Hash().Hex(),
				Amount:      decimal.NewFromBigInt(tx.Value(), 0),
				BlockHeight: h,
			})
		}
	}

	p.mu.Lock()
	p.cacheFrom, p.cacheTo, p.cache = fromHeight, toHeight, index
	p.mu.Unlock()
	return nil
}
