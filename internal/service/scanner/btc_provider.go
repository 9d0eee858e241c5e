package scanner

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// BTCProvider 基于 esplora 风格 REST API (blockstream.info / mempool.space) 的数据源
type BTCProvider struct {
	rest *restClient
}

func NewBTCProvider(baseURL string) *BTCProvider {
	return &BTCProvider{rest: newRESTClient(baseURL, nil)}
}

func (p *BTCProvider) TipHeight(ctx context.Context) (uint64, error) {
	text, err := p.rest.getText(ctx, "/blocks/tip/height")
	if err != nil {
		return 0, err
	}
	height, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("解析链顶高度失败: %w", err)
	}
	return height, nil
}

// esploraTx esplora 交易结构 (只取需要的字段)
type esploraTx struct {
	TxID   string `json:"txid"`
	Status struct {
		Confirmed   bool   `json:"confirmed"`
		BlockHeight uint64 `json:"block_height"`
	} `json:"status"`
	Vout []struct {
		ScriptPubKeyAddress string `json:"scriptpubkey_address"`
		Value               uint64 `json:"value"` // satoshi
	} `json:"vout"`
}

// AddressTransactions 同一笔交易里打给该地址的多个输出合并为一条观察
func (p *BTCProvider) AddressTransactions(ctx context.Context, address string, fromHeight, toHeight uint64) ([]TxObservation, error) {
	var txs []esploraTx
	if err := p.rest.getJSON(ctx, "/address/"+address+"/txs", &txs); err != nil {
		return nil, err
	}

	var out []TxObservation
	for _, tx := range txs {
		if !tx.Status.Confirmed {
			continue
		}
		if tx.Status.BlockHeight <= fromHeight || tx.Status.BlockHeight > toHeight {
			continue
		}

		var total uint64
		for _, vout := range tx.Vout {
			if vout.ScriptPubKeyAddress == address {
				total += vout.Value
			}
		}
		if total == 0 {
			continue
		}
		out = append(out, TxObservation{
			TxHash:      tx.TxID,
			Address:     address,
			Amount:      decimal.NewFromUint64(total),
			BlockHeight: tx.Status.BlockHeight,
		})
	}
	return out, nil
}
