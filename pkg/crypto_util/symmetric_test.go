package crypto_util

import (
	"bytes"
	"testing"
)

func TestAESGCM(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef") // 32 字节用于 AES-256
	plaintext := []byte("这是一条用于 AES-GCM 测试的秘密消息")

	nonce, ciphertext, err := EncryptAESGCM(key, plaintext, nil)
	if err != nil {
		t.Fatalf("EncryptAESGCM 失败: %v", err)
	}

	decrypted, err := DecryptAESGCM(key, nonce, ciphertext, nil)
	if err != nil {
		t.Fatalf("DecryptAESGCM 失败: %v", err)
	}

	if !bytes.Equal(plaintext, decrypted) {
		t.Errorf("解密后的消息与明文不匹配。\n得到: %s\n期望: %s", decrypted, plaintext)
	}
}

func TestAESGCM_WithAAD(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	plaintext := []byte("seed material")
	aad := []byte("master-key:v2")

	nonce, ciphertext, err := EncryptAESGCM(key, plaintext, aad)
	if err != nil {
		t.Fatalf("EncryptAESGCM 失败: %v", err)
	}

	// 正确的 AAD 可以解开
	decrypted, err := DecryptAESGCM(key, nonce, ciphertext, aad)
	if err != nil {
		t.Fatalf("DecryptAESGCM 失败: %v", err)
	}
	if !bytes.Equal(plaintext, decrypted) {
		t.Error("解密结果与明文不匹配")
	}

	// 换一个 AAD 必须认证失败
	if _, err := DecryptAESGCM(key, nonce, ciphertext, []byte("master-key:v1")); err == nil {
		t.Error("AAD 不一致时应认证失败")
	}

	// 不带 AAD 也必须失败
	if _, err := DecryptAESGCM(key, nonce, ciphertext, nil); err == nil {
		t.Error("缺少 AAD 时应认证失败")
	}
}

func TestAESGCM_InvalidKey(t *testing.T) {
	key := []byte("shortkey")
	if _, _, err := EncryptAESGCM(key, []byte("test"), nil); err == nil {
		t.Error("期望因密钥长度无效而报错，但未收到错误")
	}
}

func TestAESGCM_TamperedCiphertext(t *testing.T) {
	key := []byte("0123456789abcdef")
	nonce, ciphertext, err := EncryptAESGCM(key, []byte("hello"), nil)
	if err != nil {
		t.Fatalf("EncryptAESGCM 失败: %v", err)
	}

	ciphertext[0] ^= 0xff
	if _, err := DecryptAESGCM(key, nonce, ciphertext, nil); err == nil {
		t.Error("篡改密文后解密应失败")
	}
}
