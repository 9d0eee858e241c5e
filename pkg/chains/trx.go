package chains

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"

	"custody-core/pkg/crypto_util"
	"custody-core/pkg/hdkey"
)

// tronVersionByte Tron 地址版本字节，Base58Check 后以 'T' 开头
const tronVersionByte = 0x41

// TRXDescriptor Tron 地址派生
// 公钥哈希规则与 EVM 相同 (Keccak-256 取后 20 字节)，只是编码换成 Base58Check
type TRXDescriptor struct{}

func (d *TRXDescriptor) Chain() Chain {
	return ChainTRX
}

func (d *TRXDescriptor) AccountPath(network Network, account uint32) string {
	return fmt.Sprintf("m/44'/195'/%d'", account)
}

func (d *TRXDescriptor) DeriveRoot(wallet *hdkey.Wallet, network Network, account uint32) (*Root, error) {
	xpub, err := deriveAccountXPub(wallet, d.AccountPath(network, account))
	if err != nil {
		return nil, err
	}
	return &Root{AccountXPub: xpub}, nil
}

func (d *TRXDescriptor) DeriveAddress(root *Root, index uint32, network Network) (*Address, error) {
	child, err := deriveChild(root.AccountXPub, 0, index)
	if err != nil {
		return nil, err
	}

	pubKey, err := child.ECPubKey()
	if err != nil {
		return nil, err
	}

	return &Address{Address: PubKeyToTronAddress(pubKey.SerializeUncompressed())}, nil
}

// PubKeyToTronAddress 非压缩公钥 -> Tron Base58Check 地址
// Shasta 测试网与主网共用 0x41 版本字节
func PubKeyToTronAddress(pubKeyBytes []byte) string {
	if len(pubKeyBytes) == 65 && pubKeyBytes[0] == 0x04 {
		pubKeyBytes = pubKeyBytes[1:]
	}

	hash := crypto_util.Keccak256(pubKeyBytes)
	return base58.CheckEncode(hash[12:], tronVersionByte)
}
