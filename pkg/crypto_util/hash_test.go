package crypto_util

import (
	"testing"
)

func TestKeccak256(t *testing.T) {
	// Keccak-256 空输入的已知向量
	got := CalculateKeccak256([]byte{})
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if got != want {
		t.Errorf("Keccak256(\"\") = %s, 期望 %s", got, want)
	}
}

func TestCalculateSHA256(t *testing.T) {
	got := CalculateSHA256([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("SHA256(\"abc\") = %s, 期望 %s", got, want)
	}
}

func TestHash160(t *testing.T) {
	h := Hash160([]byte("hello"))
	if len(h) != 20 {
		t.Errorf("Hash160 应返回 20 字节，得到 %d", len(h))
	}
	// 同输入同输出
	h2 := Hash160([]byte("hello"))
	if string(h) != string(h2) {
		t.Error("Hash160 不是确定性的")
	}
}

func TestBlake2b224(t *testing.T) {
	h := Blake2b224([]byte("payment key"))
	if len(h) != 28 {
		t.Errorf("Blake2b224 应返回 28 字节，得到 %d", len(h))
	}
	if string(h) == string(Blake2b224([]byte("stake key"))) {
		t.Error("不同输入不应得到相同的哈希")
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte(`{"chain":"ETH"}`))
	b := Fingerprint([]byte(`{"chain":"BTC"}`))
	if a == b {
		t.Error("不同请求体的指纹不应相同")
	}
	if len(a) != 64 {
		t.Errorf("Blake3 指纹应为 64 个 Hex 字符，得到 %d", len(a))
	}
}
