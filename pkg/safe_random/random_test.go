package safe_random

import (
	"math/big"
	"testing"
)

func TestGenerateRandomBytes(t *testing.T) {
	b, err := GenerateRandomBytes(32)
	if err != nil {
		t.Fatalf("GenerateRandomBytes 失败: %v", err)
	}
	if len(b) != 32 {
		t.Errorf("期望 32 字节，得到 %d", len(b))
	}

	b2, _ := GenerateRandomBytes(32)
	if string(b) == string(b2) {
		t.Error("两次生成的随机字节不应相同")
	}
}

func TestGenerateRandomHexString(t *testing.T) {
	s, err := GenerateRandomHexString(16)
	if err != nil {
		t.Fatalf("GenerateRandomHexString 失败: %v", err)
	}
	if len(s) != 32 {
		t.Errorf("16 字节应编码为 32 个 Hex 字符，得到 %d", len(s))
	}
}

func TestGenerateRandomInt(t *testing.T) {
	max := big.NewInt(100)
	for i := 0; i < 10; i++ {
		n, err := GenerateRandomInt(max)
		if err != nil {
			t.Fatalf("GenerateRandomInt 失败: %v", err)
		}
		if n.Sign() < 0 || n.Cmp(max) >= 0 {
			t.Errorf("随机数 %s 超出 [0, 100) 范围", n)
		}
	}

	if _, err := GenerateRandomInt(big.NewInt(0)); err == nil {
		t.Error("max=0 应返回错误")
	}
}
