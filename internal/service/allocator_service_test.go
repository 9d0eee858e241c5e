package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"custody-core/internal/model"
	"custody-core/pkg/chains"
	"custody-core/pkg/errno"
)

func TestRequestFingerprint(t *testing.T) {
	params := AllocateParams{
		Chain:          chains.ChainETH,
		Network:        chains.NetworkMainnet,
		Asset:          "ETH",
		IdempotencyKey: "key-1",
	}

	// 同一请求体指纹稳定
	assert.Equal(t, requestFingerprint(1, params), requestFingerprint(1, params))

	// 任一业务字段变化都要变指纹 (幂等键本身不参与)
	changed := params
	changed.Chain = chains.ChainBTC
	assert.NotEqual(t, requestFingerprint(1, params), requestFingerprint(1, changed))

	changed = params
	changed.Network = chains.NetworkTestnet
	assert.NotEqual(t, requestFingerprint(1, params), requestFingerprint(1, changed))

	changed = params
	changed.Asset = "USDT"
	assert.NotEqual(t, requestFingerprint(1, params), requestFingerprint(1, changed))

	assert.NotEqual(t, requestFingerprint(1, params), requestFingerprint(2, params))

	// 幂等键不同、请求体相同: 指纹一致，允许换键重发
	rekeyed := params
	rekeyed.IdempotencyKey = "key-2"
	assert.Equal(t, requestFingerprint(1, params), requestFingerprint(1, rekeyed))
}

// 失败回放必须还原首次失败的结构化原因，而不是笼统的分配失败
func TestReplayFailure(t *testing.T) {
	idem := &model.IdempotencyRequest{
		Status:     model.IdempotencyStatusFailed,
		FailCode:   errno.ErrWalletNotInitialized.Code,
		FailReason: errno.ErrWalletNotInitialized.Message,
	}

	err := replayFailure(idem)
	code, msg := errno.Decode(err)
	assert.Equal(t, errno.ErrWalletNotInitialized.Code, code)
	assert.Equal(t, errno.ErrWalletNotInitialized.Message, msg)

	// 没记录过 fail_code 的老数据退化为通用失败
	legacy := &model.IdempotencyRequest{Status: model.IdempotencyStatusFailed}
	assert.ErrorIs(t, replayFailure(legacy), errno.ErrAllocationFailed)
}

func TestToResult(t *testing.T) {
	record := &model.DepositAddress{
		Address:        "0xabc",
		StakeAddress:   "",
		DerivationPath: "m/44'/60'/0'/0/7",
		AddressIndex:   7,
	}

	result := toResult(record)
	assert.Equal(t, "0xabc", result.Address)
	assert.Equal(t, "m/44'/60'/0'/0/7", result.DerivationPath)
	assert.Equal(t, uint32(7), result.AddressIndex)
	assert.Empty(t, result.StakeAddress)
}
