package scanner

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// TRXProvider 基于 trongrid 风格 API 的数据源。
// 原生 TRX 走账户交易列表；配置 token 合约后改走 TRC-20 转账记录。
type TRXProvider struct {
	rest  *restClient
	token string // TRC-20 合约地址 (Base58)，空串表示原生 TRX
}

func NewTRXProvider(baseURL, apiKey, tokenContract string) *TRXProvider {
	var headers map[string]string
	if apiKey != "" {
		headers = map[string]string{"TRON-PRO-API-KEY": apiKey}
	}
	return &TRXProvider{rest: newRESTClient(baseURL, headers), token: tokenContract}
}

func (p *TRXProvider) TipHeight(ctx context.Context) (uint64, error) {
	var resp struct {
		BlockHeader struct {
			RawData struct {
				Number uint64 `json:"number"`
			} `json:"raw_data"`
		} `json:"block_header"`
	}
	if err := p.rest.postJSON(ctx, "/wallet/getnowblock", nil, &resp); err != nil {
		return 0, err
	}
	if resp.BlockHeader.RawData.Number == 0 {
		return 0, fmt.Errorf("链顶高度响应异常")
	}
	return resp.BlockHeader.RawData.Number, nil
}

// trongridTx /v1/accounts/{addr}/transactions 响应项
type trongridTx struct {
	TxID        string `json:"txID"`
	BlockNumber uint64 `json:"blockNumber"`
	Ret         []struct {
		ContractRet string `json:"contractRet"`
	} `json:"ret"`
	RawData struct {
		Contract []struct {
			Type      string `json:"type"`
			Parameter struct {
				Value struct {
					Amount    int64  `json:"amount"`
					ToAddress string `json:"to_address"` // hex, 0x41 前缀
				} `json:"value"`
			} `json:"parameter"`
		} `json:"contract"`
	} `json:"raw_data"`
}

func (p *TRXProvider) AddressTransactions(ctx context.Context, address string, fromHeight, toHeight uint64) ([]TxObservation, error) {
	if p.token != "" {
		return p.trc20Transfers(ctx, address, fromHeight, toHeight)
	}

	var resp struct {
		Data []trongridTx `json:"data"`
	}
	path := fmt.Sprintf("/v1/accounts/%s/transactions?only_to=true&limit=200", address)
	if err := p.rest.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}

	var out []TxObservation
	for _, tx := range resp.Data {
		if tx.BlockNumber <= fromHeight || tx.BlockNumber > toHeight {
			continue
		}
		if len(tx.RawData.Contract) == 0 || tx.RawData.Contract[0].Type != "TransferContract" {
			continue
		}
		amount := tx.RawData.Contract[0].Parameter.Value.Amount
		if amount <= 0 {
			continue
		}
		failed := len(tx.Ret) > 0 && tx.Ret[0].ContractRet != "SUCCESS"
		out = append(out, TxObservation{
			TxHash:      tx.TxID,
			Address:     address,
			Amount:      decimal.NewFromInt(amount),
			BlockHeight: tx.BlockNumber,
			Failed:      failed,
		})
	}
	return out, nil
}

// trc20Transfers TRC-20 转账记录。trongrid 只回成功的转账，但不带区块高度，
// 这里用 block_timestamp 换算出的确认延迟不可靠，改查交易详情补高度。
func (p *TRXProvider) trc20Transfers(ctx context.Context, address string, fromHeight, toHeight uint64) ([]TxObservation, error) {
	var resp struct {
		Data []struct {
			TransactionID string `json:"transaction_id"`
			To            string `json:"to"`
			Value         string `json:"value"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/v1/accounts/%s/transactions/trc20?contract_address=%s&only_to=true&limit=200",
		address, p.token)
	if err := p.rest.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}

	var out []TxObservation
	for _, transfer := range resp.Data {
		amount, err := decimal.NewFromString(transfer.Value)
		if err != nil || amount.Sign() <= 0 {
			continue
		}
		height, err := p.txBlockNumber(ctx, transfer.TransactionID)
		if err != nil {
			return nil, err
		}
		if height <= fromHeight || height > toHeight {
			continue
		}
		out = append(out, TxObservation{
			TxHash:      transfer.TransactionID,
			Address:     address,
			Amount:      amount,
			BlockHeight: height,
		})
	}
	return out, nil
}

func (p *TRXProvider) txBlockNumber(ctx context.Context, txID string) (uint64, error) {
	var resp struct {
		BlockNumber uint64 `json:"blockNumber"`
	}
	err := p.rest.postJSON(ctx, "/wallet/gettransactioninfobyid", map[string]string{"value": txID}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.BlockNumber, nil
}
