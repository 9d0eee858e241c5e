package scanner

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ADAProvider 基于 blockfrost 风格 API 的数据源。
// 地址交易列表只给哈希和高度，lovelace 金额要再查一次交易的 UTXO 明细。
type ADAProvider struct {
	rest *restClient
}

func NewADAProvider(baseURL, projectID string) *ADAProvider {
	var headers map[string]string
	if projectID != "" {
		headers = map[string]string{"project_id": projectID}
	}
	return &ADAProvider{rest: newRESTClient(baseURL, headers)}
}

func (p *ADAProvider) TipHeight(ctx context.Context) (uint64, error) {
	var resp struct {
		Height uint64 `json:"height"`
	}
	if err := p.rest.getJSON(ctx, "/blocks/latest", &resp); err != nil {
		return 0, err
	}
	if resp.Height == 0 {
		return 0, fmt.Errorf("链顶高度响应异常")
	}
	return resp.Height, nil
}

func (p *ADAProvider) AddressTransactions(ctx context.Context, address string, fromHeight, toHeight uint64) ([]TxObservation, error) {
	var txs []struct {
		TxHash      string `json:"tx_hash"`
		BlockHeight uint64 `json:"block_height"`
	}
	path := fmt.Sprintf("/addresses/%s/transactions?from=%d&to=%d&order=asc", address, fromHeight+1, toHeight)
	if err := p.rest.getJSON(ctx, path, &txs); err != nil {
		return nil, err
	}

	var out []TxObservation
	for _, tx := range txs {
		if tx.BlockHeight <= fromHeight || tx.BlockHeight > toHeight {
			continue
		}
		amount, err := p.receivedLovelace(ctx, tx.TxHash, address)
		if err != nil {
			return nil, err
		}
		if amount.Sign() <= 0 {
			continue
		}
		out = append(out, TxObservation{
			TxHash:      tx.TxHash,
			Address:     address,
			Amount:      amount,
			BlockHeight: tx.BlockHeight,
		})
	}
	return out, nil
}

// receivedLovelace 汇总一笔交易里打到该地址的全部 lovelace 输出
func (p *ADAProvider) receivedLovelace(ctx context.Context, txHash, address string) (decimal.Decimal, error) {
	var utxos struct {
		Outputs []struct {
			Address string `json:"address"`
			Amount  []struct {
				Unit     string `json:"unit"`
				Quantity string `json:"quantity"`
			} `json:"amount"`
		} `json:"outputs"`
	}
	if err := p.rest.getJSON(ctx, "/txs/"+txHash+"/utxos", &utxos); err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, output := range utxos.Outputs {
		if output.Address != address {
			continue
		}
		for _, amt := range output.Amount {
			if amt.Unit != "lovelace" {
				continue
			}
			quantity, err := decimal.NewFromString(amt.Quantity)
			if err != nil {
				continue
			}
			total = total.Add(quantity)
		}
	}
	return total, nil
}
