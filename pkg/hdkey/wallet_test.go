package hdkey

import (
	"encoding/hex"
	"testing"

	"custody-core/pkg/bip39"

	"github.com/btcsuite/btcd/chaincfg"
)

func TestNewMasterKeyFromSeed(t *testing.T) {
	// 使用 BIP-39 生成种子
	mnemonicService := bip39.NewMnemonicService()
	mnemonic, err := mnemonicService.GenerateMnemonic(128)
	if err != nil {
		t.Fatalf("生成助记词失败: %v", err)
	}
	seed := mnemonicService.MnemonicToSeed(mnemonic, "")

	// 生成主密钥
	wallet, err := NewMasterKeyFromSeed(seed, &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("生成主密钥失败: %v", err)
	}

	if wallet.MasterKey() == nil {
		t.Fatalf("主密钥为空")
	}
}

func TestNewMasterKeyFromSeed_InvalidLength(t *testing.T) {
	if _, err := NewMasterKeyFromSeed([]byte("short"), nil); err != ErrInvalidSeed {
		t.Errorf("过短的种子应返回 ErrInvalidSeed，得到 %v", err)
	}
}

func TestDerivePath(t *testing.T) {
	seedHex := "fffcf9f6da3247d8a846f4b6113e6173"
	seed, _ := hex.DecodeString(seedHex)

	wallet, err := NewMasterKeyFromSeed(seed, &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("生成主密钥失败: %v", err)
	}

	// 多层路径: m/44'/60'/0'/0/0 (BIP-44 ETH)
	child, err := wallet.DerivePath("m/44'/60'/0'/0/0")
	if err != nil {
		t.Fatalf("派生路径失败: %v", err)
	}

	// 验证公钥转换
	pubKey, err := child.Neuter()
	if err != nil {
		t.Fatalf("转换为扩展公钥失败: %v", err)
	}
	if pubKey.IsPrivate() {
		t.Errorf("Neuter() 应该返回公钥，但 IsPrivate() 返回 true")
	}

	// 支持 h 后缀与 ' 等价
	childH, err := wallet.DerivePath("m/44h/60h/0h/0/0")
	if err != nil {
		t.Fatalf("h 后缀路径派生失败: %v", err)
	}
	if child.String() != childH.String() {
		t.Error("' 与 h 两种硬化写法应派生出同一密钥")
	}
}

// 核心安全不变式: 账户级之后的收款地址派生不需要私钥。
// 从 xprv 派生 m/0/i 与从对应 xpub 派生 m/0/i 必须得到同一个公钥。
func TestPublicOnlyDerivation(t *testing.T) {
	seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	wallet, err := NewMasterKeyFromSeed(seed, &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("生成主密钥失败: %v", err)
	}

	account, err := wallet.DerivePath("m/44'/0'/0'")
	if err != nil {
		t.Fatalf("派生账户密钥失败: %v", err)
	}

	accountPub, err := account.Neuter()
	if err != nil {
		t.Fatalf("Neuter 失败: %v", err)
	}

	// 再经过一次序列化/反序列化，模拟从数据库读回 xpub
	restored, err := ParseExtendedKey(accountPub.String())
	if err != nil {
		t.Fatalf("解析 xpub 失败: %v", err)
	}
	if restored.IsPrivate() {
		t.Fatal("从 xpub 还原的密钥不应包含私钥")
	}

	for _, index := range []uint32{0, 1, 42} {
		fromPriv, err := DerivePathFrom(account, "0")
		if err != nil {
			t.Fatalf("私钥侧派生失败: %v", err)
		}
		fromPriv, err = fromPriv.Derive(index)
		if err != nil {
			t.Fatalf("私钥侧派生失败: %v", err)
		}

		fromPub, err := DerivePathFrom(restored, "0")
		if err != nil {
			t.Fatalf("公钥侧派生失败: %v", err)
		}
		fromPub, err = fromPub.Derive(index)
		if err != nil {
			t.Fatalf("公钥侧派生失败: %v", err)
		}

		privPub, _ := fromPriv.ECPubKey()
		pubPub, _ := fromPub.ECPubKey()
		if !privPub.IsEqual(pubPub) {
			t.Errorf("索引 %d: xprv 派生与 xpub 派生的公钥不一致", index)
		}
	}
}

// xpub 上做硬化派生必须失败
func TestHardenedFromPublicFails(t *testing.T) {
	seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	wallet, _ := NewMasterKeyFromSeed(seed, &chaincfg.MainNetParams)

	pub, _ := wallet.MasterKey().Neuter()
	if _, err := DerivePathFrom(pub, "44'"); err == nil {
		t.Error("在扩展公钥上做硬化派生应返回错误")
	}
}
