package chains

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"

	"custody-core/pkg/crypto_util"
	"custody-core/pkg/hdkey"
)

// BTCDescriptor UTXO 系地址派生，默认原生隔离见证 (BIP-84)
type BTCDescriptor struct{}

func (d *BTCDescriptor) Chain() Chain {
	return ChainBTC
}

func (d *BTCDescriptor) AccountPath(network Network, account uint32) string {
	if network == NetworkTestnet {
		return fmt.Sprintf("m/84'/1'/%d'", account)
	}
	return fmt.Sprintf("m/84'/0'/%d'", account)
}

func (d *BTCDescriptor) DeriveRoot(wallet *hdkey.Wallet, network Network, account uint32) (*Root, error) {
	xpub, err := deriveAccountXPub(wallet, d.AccountPath(network, account))
	if err != nil {
		return nil, err
	}
	return &Root{AccountXPub: xpub}, nil
}

func (d *BTCDescriptor) DeriveAddress(root *Root, index uint32, network Network) (*Address, error) {
	child, err := deriveChild(root.AccountXPub, 0, index)
	if err != nil {
		return nil, err
	}

	pubKey, err := child.ECPubKey()
	if err != nil {
		return nil, err
	}

	addr, err := PubKeyToSegwitAddress(pubKey.SerializeCompressed(), netParams(network))
	if err != nil {
		return nil, err
	}
	return &Address{Address: addr}, nil
}

func netParams(network Network) *chaincfg.Params {
	if network == NetworkTestnet {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}

// PubKeyToSegwitAddress 压缩公钥 -> P2WPKH (bech32, witness v0)
func PubKeyToSegwitAddress(pubKeyBytes []byte, params *chaincfg.Params) (string, error) {
	program := crypto_util.Hash160(pubKeyBytes)

	converted, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("witness program 转换失败: %w", err)
	}

	// witness version 0 + 5-bit 分组的 program
	return bech32.Encode(params.Bech32HRPSegwit, append([]byte{0x00}, converted...))
}

// PubKeyToLegacyAddress 压缩公钥 -> P2PKH (Base58Check, 网络版本字节)
func PubKeyToLegacyAddress(pubKeyBytes []byte, params *chaincfg.Params) string {
	return base58.CheckEncode(crypto_util.Hash160(pubKeyBytes), params.PubKeyHashAddrID)
}

// ScriptHashToAddress 脚本哈希 -> P2SH (Base58Check)
func ScriptHashToAddress(scriptHash []byte, params *chaincfg.Params) string {
	return base58.CheckEncode(scriptHash, params.ScriptHashAddrID)
}
