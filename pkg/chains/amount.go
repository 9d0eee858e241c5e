package chains

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Decimals 各链基础单位的小数位数
// 记账路径一律使用基础单位整数，只有展示边界才做小数转换
var chainDecimals = map[Chain]int32{
	ChainETH: 18, // wei
	ChainBTC: 8,  // satoshi
	ChainTRX: 6,  // sun
	ChainXRP: 6,  // drop
	ChainADA: 6,  // lovelace
}

// Decimals 返回链基础单位的小数位数
func Decimals(chain Chain) (int32, error) {
	d, ok := chainDecimals[chain]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedChain, chain)
	}
	return d, nil
}

// ToBaseUnit 显示金额 -> 基础单位整数 (例如 "0.01" BTC -> 1000000)
// 超出精度的小数位直接判错，不做四舍五入
func ToBaseUnit(chain Chain, display decimal.Decimal) (decimal.Decimal, error) {
	d, err := Decimals(chain)
	if err != nil {
		return decimal.Zero, err
	}

	base := display.Shift(d)
	if !base.Equal(base.Truncate(0)) {
		return decimal.Zero, fmt.Errorf("金额 %s 超出 %s 的精度 (%d 位)", display, chain, d)
	}
	return base, nil
}

// FromBaseUnit 基础单位整数 -> 显示金额
func FromBaseUnit(chain Chain, base decimal.Decimal) (decimal.Decimal, error) {
	d, err := Decimals(chain)
	if err != nil {
		return decimal.Zero, err
	}
	return base.Shift(-d), nil
}
