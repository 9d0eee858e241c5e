// Package vault 负责助记词的静态加密。
//
// 加密密钥由长期密封密钥 + 每条记录的随机盐经慢 KDF 派生，
// 密文用 AES-256-GCM 并绑定版本化的上下文 (AAD)。
// KDF 有两个强度版本并存，解密按固定顺序逐个策略回退，
// 以兼容上下文/版本机制引入之前写入的历史记录。
package vault

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"

	"crypto/sha256"

	"custody-core/pkg/crypto_util"
	"custody-core/pkg/safe_random"
)

// KDF 版本。加新版本时在 deriveKey 加一个分支，并更新 CurrentKDFVersion。
const (
	KDFVersionPBKDF2 = 1 // PBKDF2-SHA256, 120000 轮 (历史版本)
	KDFVersionScrypt = 2 // scrypt N=32768 r=8 p=1

	CurrentKDFVersion = KDFVersionScrypt
)

// CurrentContext 当前写入时绑定的 AAD 上下文
const CurrentContext = "master-key:v2"

const (
	saltLen          = 32
	keyLen           = 32
	pbkdf2Iterations = 120000
	scryptN          = 32768
	scryptR          = 8
	scryptP          = 1
)

var (
	ErrSecretMissing = errors.New("密封密钥未配置，拒绝加密")
	ErrDecryptFailed = errors.New("所有解密策略均失败")
)

// Sealed 一条加密记录的全部密文学材料 (对应 master_keys 表的列)
type Sealed struct {
	Ciphertext []byte
	Nonce      []byte
	Salt       []byte
	KDFVersion int
	Context    string // 绑定的 AAD 上下文；历史记录可能为空
}

// Vault 持有长期密封密钥
type Vault struct {
	secret []byte
}

// New 创建 Vault。secret 为空直接拒绝 (fail closed)。
func New(secret string) (*Vault, error) {
	if secret == "" {
		return nil, ErrSecretMissing
	}
	return &Vault{secret: []byte(secret)}, nil
}

// Encrypt 用当前 KDF 版本和上下文加密明文
func (v *Vault) Encrypt(plaintext string) (*Sealed, error) {
	return v.encryptWith(plaintext, CurrentKDFVersion, CurrentContext)
}

func (v *Vault) encryptWith(plaintext string, version int, context string) (*Sealed, error) {
	salt, err := safe_random.GenerateRandomBytes(saltLen)
	if err != nil {
		return nil, err
	}

	key, err := v.deriveKey(version, salt)
	if err != nil {
		return nil, err
	}

	nonce, ciphertext, err := crypto_util.EncryptAESGCM(key, []byte(plaintext), aadBytes(context))
	if err != nil {
		return nil, err
	}

	return &Sealed{
		Ciphertext: ciphertext,
		Nonce:      nonce,
		Salt:       salt,
		KDFVersion: version,
		Context:    context,
	}, nil
}

// decryptAttempt 单个解密策略: 一个 KDF 版本 + 一种上下文取值
type decryptAttempt struct {
	version int
	context string
}

// Decrypt 按固定顺序尝试解密策略，全部失败才报错。
// 顺序: 记录上的版本+上下文 → 同版本无上下文 → 其余版本从新到旧，
// 每个版本先带上下文再不带。有界搜索，不是放宽验收。
func (v *Vault) Decrypt(s *Sealed) (string, error) {
	for _, attempt := range decryptOrder(s) {
		key, err := v.deriveKey(attempt.version, s.Salt)
		if err != nil {
			continue
		}
		plaintext, err := crypto_util.DecryptAESGCM(key, s.Nonce, s.Ciphertext, aadBytes(attempt.context))
		if err == nil {
			return string(plaintext), nil
		}
	}
	// 注意: 错误里绝不携带密钥材料
	return "", ErrDecryptFailed
}

func decryptOrder(s *Sealed) []decryptAttempt {
	versions := []int{KDFVersionScrypt, KDFVersionPBKDF2}

	attempts := []decryptAttempt{{version: s.KDFVersion, context: s.Context}}
	if s.Context != "" {
		attempts = append(attempts, decryptAttempt{version: s.KDFVersion, context: ""})
	}

	for _, ver := range versions {
		if ver == s.KDFVersion {
			continue
		}
		attempts = append(attempts, decryptAttempt{version: ver, context: s.Context})
		if s.Context != "" {
			attempts = append(attempts, decryptAttempt{version: ver, context: ""})
		}
	}
	return attempts
}

func (v *Vault) deriveKey(version int, salt []byte) ([]byte, error) {
	switch version {
	case KDFVersionScrypt:
		return scrypt.Key(v.secret, salt, scryptN, scryptR, scryptP, keyLen)
	case KDFVersionPBKDF2:
		return pbkdf2.Key(v.secret, salt, pbkdf2Iterations, keyLen, sha256.New), nil
	default:
		return nil, fmt.Errorf("未知的 KDF 版本: %d", version)
	}
}

func aadBytes(context string) []byte {
	if context == "" {
		return nil
	}
	return []byte(context)
}
