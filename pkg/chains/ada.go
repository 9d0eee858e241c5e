package chains

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"custody-core/pkg/crypto_util"
	"custody-core/pkg/hdkey"
)

// CIP-1852 的两条软派生子链
const (
	adaExternalChain uint32 = 0 // 收款
	adaStakeChain    uint32 = 2 // 质押凭证
)

// ADADescriptor 带质押的 UTXO 链地址派生 (CIP-1852 等价路径)
//
// 基础地址由两个凭证构成: external 子链上第 index 个密钥的 payment 哈希，
// 加 stake 子链上固定第 0 个密钥的 stake 哈希。奖励地址只用 stake 凭证。
// 凭证哈希统一为 Blake2b-224。
type ADADescriptor struct{}

func (d *ADADescriptor) Chain() Chain {
	return ChainADA
}

func (d *ADADescriptor) AccountPath(network Network, account uint32) string {
	return fmt.Sprintf("m/1852'/1815'/%d'", account)
}

// DeriveRoot 除了账户级 xpub，还预派生 external/stake 两条链级 xpub。
// 之后的地址派生只需在链级 xpub 上做一层非硬化派生。
func (d *ADADescriptor) DeriveRoot(wallet *hdkey.Wallet, network Network, accountIndex uint32) (*Root, error) {
	account, err := wallet.DerivePath(d.AccountPath(network, accountIndex))
	if err != nil {
		return nil, fmt.Errorf("派生账户密钥失败: %w", err)
	}

	accountPub, err := account.Neuter()
	if err != nil {
		return nil, err
	}

	external, err := account.Derive(adaExternalChain)
	if err != nil {
		return nil, err
	}
	externalPub, err := external.Neuter()
	if err != nil {
		return nil, err
	}

	stake, err := account.Derive(adaStakeChain)
	if err != nil {
		return nil, err
	}
	stakePub, err := stake.Neuter()
	if err != nil {
		return nil, err
	}

	return &Root{
		AccountXPub:  accountPub.String(),
		ExternalXPub: externalPub.String(),
		StakeXPub:    stakePub.String(),
	}, nil
}

func (d *ADADescriptor) DeriveAddress(root *Root, index uint32, network Network) (*Address, error) {
	if root.ExternalXPub == "" || root.StakeXPub == "" {
		return nil, ErrMissingXPub
	}

	paymentHash, err := credentialHash(root.ExternalXPub, index)
	if err != nil {
		return nil, fmt.Errorf("payment 凭证派生失败: %w", err)
	}

	// stake 凭证整个账户固定用第 0 个，奖励归集到同一个质押身份
	stakeHash, err := credentialHash(root.StakeXPub, 0)
	if err != nil {
		return nil, fmt.Errorf("stake 凭证派生失败: %w", err)
	}

	base, err := encodeBaseAddress(paymentHash, stakeHash, network)
	if err != nil {
		return nil, err
	}
	reward, err := encodeRewardAddress(stakeHash, network)
	if err != nil {
		return nil, err
	}

	return &Address{Address: base, StakeAddress: reward}, nil
}

// credentialHash 链级 xpub 派生第 index 个子公钥并取 Blake2b-224
func credentialHash(chainXPub string, index uint32) ([]byte, error) {
	key, err := hdkey.ParseExtendedKey(chainXPub)
	if err != nil {
		return nil, err
	}
	child, err := key.Derive(index)
	if err != nil {
		return nil, err
	}
	pubKey, err := child.ECPubKey()
	if err != nil {
		return nil, err
	}
	return crypto_util.Blake2b224(pubKey.SerializeCompressed()), nil
}

func adaNetworkID(network Network) byte {
	if network == NetworkTestnet {
		return 0x00
	}
	return 0x01
}

// encodeBaseAddress header(支付密钥哈希+质押密钥哈希类型) || payment || stake
func encodeBaseAddress(paymentHash, stakeHash []byte, network Network) (string, error) {
	hrp := "addr"
	if network == NetworkTestnet {
		hrp = "addr_test"
	}

	data := make([]byte, 0, 1+len(paymentHash)+len(stakeHash))
	data = append(data, adaNetworkID(network)) // 高 4 位 0000 = base address
	data = append(data, paymentHash...)
	data = append(data, stakeHash...)

	return encodeBech32(hrp, data)
}

// encodeRewardAddress header 0b1110 || stake
func encodeRewardAddress(stakeHash []byte, network Network) (string, error) {
	hrp := "stake"
	if network == NetworkTestnet {
		hrp = "stake_test"
	}

	data := make([]byte, 0, 1+len(stakeHash))
	data = append(data, 0xe0|adaNetworkID(network))
	data = append(data, stakeHash...)

	return encodeBech32(hrp, data)
}

func encodeBech32(hrp string, data []byte) (string, error) {
	converted, err := bech32.ConvertBits(data, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, converted)
}
