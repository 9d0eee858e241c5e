package scanner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// XRPProvider 基于 rippled JSON-RPC 的数据源。
// 高度即 validated ledger index；金额以 drop 计，用 meta.delivered_amount
// 而不是 tx.Amount (partial payment 场景两者可能不同)。
type XRPProvider struct {
	rest *restClient
}

func NewXRPProvider(baseURL string) *XRPProvider {
	return &XRPProvider{rest: newRESTClient(baseURL, nil)}
}

type rippledRequest struct {
	Method string                   `json:"method"`
	Params []map[string]interface{} `json:"params"`
}

func (p *XRPProvider) TipHeight(ctx context.Context) (uint64, error) {
	var resp struct {
		Result struct {
			LedgerIndex uint64 `json:"ledger_index"`
			Status      string `json:"status"`
		} `json:"result"`
	}
	req := rippledRequest{
		Method: "ledger",
		Params: []map[string]interface{}{{"ledger_index": "validated"}},
	}
	if err := p.rest.postJSON(ctx, "/", req, &resp); err != nil {
		return 0, err
	}
	if resp.Result.Status != "success" {
		return 0, fmt.Errorf("rippled ledger 查询失败: %s", resp.Result.Status)
	}
	return resp.Result.LedgerIndex, nil
}

func (p *XRPProvider) AddressTransactions(ctx context.Context, address string, fromHeight, toHeight uint64) ([]TxObservation, error) {
	var resp struct {
		Result struct {
			Status       string `json:"status"`
			Transactions []struct {
				Validated bool `json:"validated"`
				Tx        struct {
					TransactionType string `json:"TransactionType"`
					Destination     string `json:"Destination"`
					Hash            string `json:"hash"`
					LedgerIndex     uint64 `json:"ledger_index"`
				} `json:"tx"`
				Meta struct {
					TransactionResult string          `json:"TransactionResult"`
					DeliveredAmount   json.RawMessage `json:"delivered_amount"`
				} `json:"meta"`
			} `json:"transactions"`
		} `json:"result"`
	}
	req := rippledRequest{
		Method: "account_tx",
		Params: []map[string]interface{}{{
			"account":          address,
			"ledger_index_min": fromHeight + 1,
			"ledger_index_max": toHeight,
			"limit":            200,
		}},
	}
	if err := p.rest.postJSON(ctx, "/", req, &resp); err != nil {
		return nil, err
	}
	if resp.Result.Status != "success" {
		return nil, fmt.Errorf("rippled account_tx 查询失败: %s", resp.Result.Status)
	}

	var out []TxObservation
	for _, entry := range resp.Result.Transactions {
		if !entry.Validated || entry.Tx.TransactionType != "Payment" || entry.Tx.Destination != address {
			continue
		}
		// delivered_amount 为字符串时是 XRP drops；对象形式是发行资产，跳过
		var drops string
		if err := json.Unmarshal(entry.Meta.DeliveredAmount, &drops); err != nil {
			continue
		}
		amount, err := decimal.NewFromString(drops)
		if err != nil || amount.Sign() <= 0 {
			continue
		}
		out = append(out, TxObservation{
			TxHash:      entry.Tx.Hash,
			Address:     address,
			Amount:      amount,
			BlockHeight: entry.Tx.LedgerIndex,
			Failed:      entry.Meta.TransactionResult != "tesSUCCESS",
		})
	}
	return out, nil
}
