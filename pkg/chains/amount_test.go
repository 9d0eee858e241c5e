package chains

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnit(t *testing.T) {
	tests := []struct {
		name    string
		chain   Chain
		display string
		want    string
		wantErr bool
	}{
		{"BTC 0.0001", ChainBTC, "0.0001", "10000", false},
		{"BTC 0.01", ChainBTC, "0.01", "1000000", false},
		{"ETH 1.5", ChainETH, "1.5", "1500000000000000000", false},
		{"XRP 整数", ChainXRP, "25", "25000000", false},
		{"超出精度", ChainBTC, "0.000000001", "", true},
		{"未知链", Chain("DOGE"), "1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnit(tt.chain, decimal.RequireFromString(tt.display))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFromBaseUnit(t *testing.T) {
	got, err := FromBaseUnit(ChainBTC, decimal.RequireFromString("1000000"))
	require.NoError(t, err)
	assert.Equal(t, "0.01", got.String())

	// 往返一致
	back, err := ToBaseUnit(ChainBTC, got)
	require.NoError(t, err)
	assert.Equal(t, "1000000", back.String())
}
