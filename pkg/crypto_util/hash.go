package crypto_util

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// Keccak256 计算输入的 Keccak256 哈希值 (以太坊/Tron 地址使用)。
func Keccak256(data []byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(data)
	return hash.Sum(nil)
}

// CalculateKeccak256 计算 Keccak256 并返回 Hex 字符串。
func CalculateKeccak256(data []byte) string {
	return hex.EncodeToString(Keccak256(data))
}

// Hash160 先 SHA-256 再 RIPEMD-160 (BTC/XRP 公钥哈希)。
func Hash160(data []byte) []byte {
	sha := sha256.Sum256(data)
	r := ripemd160.New()
	r.Write(sha[:])
	return r.Sum(nil)
}

// Blake2b224 计算 28 字节的 Blake2b 哈希 (Cardano 密钥凭证)。
func Blake2b224(data []byte) []byte {
	hash, _ := blake2b.New(28, nil) // key 为 nil 时不会出错
	hash.Write(data)
	return hash.Sum(nil)
}

// CalculateSHA256 计算输入的 SHA256 哈希值。
func CalculateSHA256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Fingerprint 计算输入的 Blake3 哈希值并返回 Hex。
// 用于幂等请求体的指纹比对，快且无碰撞顾虑。
func Fingerprint(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}
