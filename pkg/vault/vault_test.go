package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestNew_FailClosed(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrSecretMissing)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	v, err := New("long-term-secret")
	require.NoError(t, err)

	sealed, err := v.Encrypt(testMnemonic)
	require.NoError(t, err)
	assert.Equal(t, CurrentKDFVersion, sealed.KDFVersion)
	assert.Equal(t, CurrentContext, sealed.Context)
	assert.Len(t, sealed.Salt, 32)

	plaintext, err := v.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, plaintext)
}

// 两个 KDF 版本都必须能往返
func TestRoundTrip_AllKDFVersions(t *testing.T) {
	v, err := New("long-term-secret")
	require.NoError(t, err)

	for _, version := range []int{KDFVersionPBKDF2, KDFVersionScrypt} {
		sealed, err := v.encryptWith(testMnemonic, version, CurrentContext)
		require.NoError(t, err)

		plaintext, err := v.Decrypt(sealed)
		require.NoError(t, err, "KDF 版本 %d 解密失败", version)
		assert.Equal(t, testMnemonic, plaintext)
	}
}

// 上下文/版本机制之前写入的记录: 无上下文，旧 KDF，且记录的版本号可能不准。
// 回退链必须能解开。
func TestDecrypt_LegacyRecordFallback(t *testing.T) {
	v, err := New("long-term-secret")
	require.NoError(t, err)

	// 旧版 KDF、无上下文
	sealed, err := v.encryptWith(testMnemonic, KDFVersionPBKDF2, "")
	require.NoError(t, err)

	// 模拟迁移中被错误标注为当前版本的记录
	sealed.KDFVersion = CurrentKDFVersion
	sealed.Context = CurrentContext

	plaintext, err := v.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, plaintext)
}

func TestDecrypt_WrongSecretFails(t *testing.T) {
	v1, _ := New("secret-one")
	v2, _ := New("secret-two")

	sealed, err := v1.Encrypt(testMnemonic)
	require.NoError(t, err)

	_, err = v2.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestDecrypt_TamperedContextFails(t *testing.T) {
	v, _ := New("long-term-secret")
	sealed, err := v.Encrypt(testMnemonic)
	require.NoError(t, err)

	// 换一个不在回退链上的上下文，AAD 绑定应让解密失败
	sealed.Context = "master-key:v99"
	_, err = v.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

// 回退链是有界的固定顺序
func TestDecryptOrder(t *testing.T) {
	s := &Sealed{KDFVersion: KDFVersionScrypt, Context: CurrentContext}
	order := decryptOrder(s)

	require.Len(t, order, 4)
	assert.Equal(t, decryptAttempt{KDFVersionScrypt, CurrentContext}, order[0])
	assert.Equal(t, decryptAttempt{KDFVersionScrypt, ""}, order[1])
	assert.Equal(t, decryptAttempt{KDFVersionPBKDF2, CurrentContext}, order[2])
	assert.Equal(t, decryptAttempt{KDFVersionPBKDF2, ""}, order[3])

	// 无上下文的记录: 只剩版本回退
	s2 := &Sealed{KDFVersion: KDFVersionPBKDF2, Context: ""}
	order2 := decryptOrder(s2)
	require.Len(t, order2, 2)
	assert.Equal(t, decryptAttempt{KDFVersionPBKDF2, ""}, order2[0])
	assert.Equal(t, decryptAttempt{KDFVersionScrypt, ""}, order2[1])
}
