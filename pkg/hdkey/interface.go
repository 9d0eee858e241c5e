package hdkey

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
)

var (
	ErrInvalidSeed = errors.New("种子长度必须在 16 到 64 字节之间")
	ErrNeedPublic  = errors.New("此处只应持有扩展公钥 (xpub)")
)

// ExtendedKey 抽象 BIP-32 扩展密钥，屏蔽底层实现
type ExtendedKey interface {
	// String 返回序列化形式 (xprv/xpub)
	String() string

	// ECPubKey 返回椭圆曲线公钥
	ECPubKey() (*btcec.PublicKey, error)

	// ECPrivKey 返回椭圆曲线私钥 (公钥上调用会报错)
	ECPrivKey() (*btcec.PrivateKey, error)

	// Derive 派生指定索引的子密钥 (索引 >= 2^31 为硬化派生)
	Derive(index uint32) (ExtendedKey, error)

	// IsPrivate 是否包含私钥材料
	IsPrivate() bool

	// Neuter 去掉私钥部分，返回对应的扩展公钥
	Neuter() (ExtendedKey, error)
}
