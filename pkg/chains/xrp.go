package chains

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"custody-core/pkg/crypto_util"
	"custody-core/pkg/hdkey"
)

// rippleAlphabet XRP 专用的 Base58 字母表 (首字符 'r'，账户地址因此以 r 开头)
const rippleAlphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

// xrpAccountVersion 账户 ID 的版本字节
const xrpAccountVersion = 0x00

// XRPDescriptor XRP 地址派生
// 公钥哈希规则与 BTC 相同 (hash160)，编码用 Ripple 字母表的 Base58Check
type XRPDescriptor struct{}

func (d *XRPDescriptor) Chain() Chain {
	return ChainXRP
}

func (d *XRPDescriptor) AccountPath(network Network, account uint32) string {
	return fmt.Sprintf("m/44'/144'/%d'", account)
}

func (d *XRPDescriptor) DeriveRoot(wallet *hdkey.Wallet, network Network, account uint32) (*Root, error) {
	xpub, err := deriveAccountXPub(wallet, d.AccountPath(network, account))
	if err != nil {
		return nil, err
	}
	return &Root{AccountXPub: xpub}, nil
}

func (d *XRPDescriptor) DeriveAddress(root *Root, index uint32, network Network) (*Address, error) {
	child, err := deriveChild(root.AccountXPub, 0, index)
	if err != nil {
		return nil, err
	}

	pubKey, err := child.ECPubKey()
	if err != nil {
		return nil, err
	}

	return &Address{Address: PubKeyToXRPAddress(pubKey.SerializeCompressed())}, nil
}

// PubKeyToXRPAddress 压缩公钥 -> XRP 经典地址 (r...)
func PubKeyToXRPAddress(pubKeyBytes []byte) string {
	accountID := crypto_util.Hash160(pubKeyBytes)

	payload := make([]byte, 0, 1+len(accountID)+4)
	payload = append(payload, xrpAccountVersion)
	payload = append(payload, accountID...)

	// Base58Check 校验和: double-SHA256 前 4 字节
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	payload = append(payload, second[:4]...)

	return encodeRippleBase58(payload)
}

// encodeRippleBase58 用 Ripple 字母表做 Base58 编码
// 前导零字节逐个映射为字母表首字符 'r'
func encodeRippleBase58(input []byte) string {
	x := new(big.Int).SetBytes(input)
	radix := big.NewInt(58)
	zero := big.NewInt(0)
	mod := new(big.Int)

	out := make([]byte, 0, len(input)*138/100+1)
	for x.Cmp(zero) > 0 {
		x.DivMod(x, radix, mod)
		out = append(out, rippleAlphabet[mod.Int64()])
	}

	for _, b := range input {
		if b != 0 {
			break
		}
		out = append(out, rippleAlphabet[0])
	}

	// 反转
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
