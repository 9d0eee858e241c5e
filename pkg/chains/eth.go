package chains

import (
	"encoding/hex"
	"fmt"
	"strings"

	"custody-core/pkg/crypto_util"
	"custody-core/pkg/hdkey"
)

// ETHDescriptor EVM 系地址派生
// ERC-20 等代币与主币共用同一个地址，这里不区分资产
type ETHDescriptor struct{}

func (d *ETHDescriptor) Chain() Chain {
	return ChainETH
}

func (d *ETHDescriptor) AccountPath(network Network, account uint32) string {
	// 测试网也沿用 60：EVM 地址与网络无关
	return fmt.Sprintf("m/44'/60'/%d'", account)
}

func (d *ETHDescriptor) DeriveRoot(wallet *hdkey.Wallet, network Network, account uint32) (*Root, error) {
	xpub, err := deriveAccountXPub(wallet, d.AccountPath(network, account))
	if err != nil {
		return nil, err
	}
	return &Root{AccountXPub: xpub}, nil
}

func (d *ETHDescriptor) DeriveAddress(root *Root, index uint32, network Network) (*Address, error) {
	child, err := deriveChild(root.AccountXPub, 0, index)
	if err != nil {
		return nil, err
	}

	pubKey, err := child.ECPubKey()
	if err != nil {
		return nil, err
	}

	addr, err := PubKeyToETHAddress(pubKey.SerializeUncompressed())
	if err != nil {
		return nil, err
	}
	return &Address{Address: addr}, nil
}

// PubKeyToETHAddress 将公钥字节 (非压缩格式, 65 bytes, 0x04...) 转换为 EIP-55 地址
func PubKeyToETHAddress(pubKeyBytes []byte) (string, error) {
	// 1. 去掉前缀 0x04 (如果存在)
	if len(pubKeyBytes) == 65 && pubKeyBytes[0] == 0x04 {
		pubKeyBytes = pubKeyBytes[1:]
	}

	// 2. Keccak-256 哈希
	hash := crypto_util.Keccak256(pubKeyBytes)

	// 3. 取后 20 字节
	addressBytes := hash[12:]

	// 4. Hex 编码并添加 EIP-55 校验和
	addressHex := hex.EncodeToString(addressBytes)
	return "0x" + ToChecksumAddress(addressHex), nil
}

// ToChecksumAddress 实现 EIP-55 混合大小写校验
func ToChecksumAddress(address string) string {
	address = strings.ToLower(strings.TrimPrefix(address, "0x"))
	hash := crypto_util.Keccak256([]byte(address))
	hexHash := hex.EncodeToString(hash)

	var sb strings.Builder
	for i := 0; i < len(address); i++ {
		char := address[i]
		// 检查 hash 的第 i 位是否 >= 8
		if hexCharToInt(hexHash[i]) >= 8 {
			sb.WriteString(strings.ToUpper(string(char)))
		} else {
			sb.WriteByte(char)
		}
	}
	return sb.String()
}

func hexCharToInt(c byte) byte {
	if c >= '0' && c <= '9' {
		return c - '0'
	}
	if c >= 'a' && c <= 'f' {
		return c - 'a' + 10
	}
	return 0
}
