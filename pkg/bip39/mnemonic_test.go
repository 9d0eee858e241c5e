package bip39

import (
	"strings"
	"testing"
)

func TestGenerateMnemonic(t *testing.T) {
	s := NewMnemonicService()

	tests := []struct {
		name    string
		bitSize int
		words   int
	}{
		{"12 words", 128, 12},
		{"24 words", 256, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mnemonic, err := s.GenerateMnemonic(tt.bitSize)
			if err != nil {
				t.Fatalf("生成助记词失败: %v", err)
			}
			if got := len(strings.Fields(mnemonic)); got != tt.words {
				t.Errorf("期望 %d 个单词，得到 %d", tt.words, got)
			}
			if !s.ValidateMnemonic(mnemonic) {
				t.Error("生成的助记词未通过校验")
			}
		})
	}
}

func TestGenerateMnemonic_InvalidBitSize(t *testing.T) {
	s := NewMnemonicService()
	if _, err := s.GenerateMnemonic(100); err == nil {
		t.Error("非法的熵位数应返回错误")
	}
}

func TestValidateMnemonic(t *testing.T) {
	s := NewMnemonicService()

	// 标准测试助记词
	valid := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	if !s.ValidateMnemonic(valid) {
		t.Error("标准测试助记词应通过校验")
	}

	// 篡改最后一个单词破坏校验和
	invalid := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon"
	if s.ValidateMnemonic(invalid) {
		t.Error("校验和错误的助记词不应通过")
	}
}

func TestMnemonicToSeed(t *testing.T) {
	s := NewMnemonicService()
	mnemonic := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

	seed := s.MnemonicToSeed(mnemonic, "")
	if len(seed) != 64 {
		t.Errorf("BIP-39 种子应为 64 字节，得到 %d", len(seed))
	}

	// 同一助记词同一密码必须得到同一种子
	seed2 := s.MnemonicToSeed(mnemonic, "")
	if string(seed) != string(seed2) {
		t.Error("种子派生不是确定性的")
	}

	// 不同的 passphrase 得到不同的种子
	seed3 := s.MnemonicToSeed(mnemonic, "TREZOR")
	if string(seed) == string(seed3) {
		t.Error("不同 passphrase 不应得到相同的种子")
	}
}
