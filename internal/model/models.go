package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MasterKey 主助记词的加密存档
// 同一时间只有一条 active 记录；停用只翻 Active 标志，从不删除
type MasterKey struct {
	ID             uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	KeyID          string         `gorm:"type:varchar(64);not null;unique" json:"key_id"`
	Ciphertext     []byte         `gorm:"type:bytea;not null" json:"-"`
	Nonce          []byte         `gorm:"type:bytea;not null" json:"-"`
	Salt           []byte         `gorm:"type:bytea;not null" json:"-"`
	KDFVersion     int            `gorm:"not null" json:"kdf_version"`          // 选择 KDF 强度，支持不停机升级
	AuthContext    string         `gorm:"type:varchar(64)" json:"auth_context"` // 版本化 AAD；换上下文即让解密失效
	Active         bool           `gorm:"not null;default:false;index" json:"active"`
	BackupVerified bool           `gorm:"not null;default:false" json:"backup_verified"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// WalletRoot 每个 (用户, 链, 网络) 一条，保存可派生的账户级 xpub 和派生游标
// 只停用不删除
type WalletRoot struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint64    `gorm:"not null;uniqueIndex:idx_root_user_chain_network" json:"user_id"`
	Chain         string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_root_user_chain_network" json:"chain"`
	Network       string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_root_user_chain_network" json:"network"`
	AccountXPub   string    `gorm:"type:varchar(255);not null" json:"-"`
	ExternalXPub  string    `gorm:"type:varchar(255)" json:"-"` // 仅 ADA: 收款子链 xpub
	StakeXPub     string    `gorm:"type:varchar(255)" json:"-"` // 仅 ADA: 质押子链 xpub
	PathTemplate  string    `gorm:"type:varchar(64);not null" json:"path_template"`
	NextIndex     uint32    `gorm:"not null;default:0" json:"next_index"` // 单调递增的派生游标
	AutoGenerated bool      `gorm:"not null;default:true" json:"auto_generated"`
	Verified      bool      `gorm:"not null;default:false" json:"verified"`
	Active        bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DepositAddress 充值地址
// 业务唯一键是 (user, chain, network)：同一条账户链上多种资产共用一个地址，
// Asset 列仅做记账标注。地址索引在同一 WalletRoot 内最多分配一次。
type DepositAddress struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint64    `gorm:"not null;uniqueIndex:idx_addr_user_chain_network" json:"user_id"`
	Chain          string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_addr_user_chain_network;uniqueIndex:idx_addr_root_index" json:"chain"`
	Network        string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_addr_user_chain_network;uniqueIndex:idx_addr_root_index" json:"network"`
	Asset          string    `gorm:"type:varchar(20);not null" json:"asset"`
	Address        string    `gorm:"type:varchar(255);not null;index" json:"address"`
	StakeAddress   string    `gorm:"type:varchar(255)" json:"stake_address,omitempty"` // 仅 ADA
	DerivationPath string    `gorm:"type:varchar(64);not null" json:"derivation_path"`
	WalletRootID   uint64    `gorm:"not null;uniqueIndex:idx_addr_root_index" json:"wallet_root_id"`
	AddressIndex   uint32    `gorm:"not null;uniqueIndex:idx_addr_root_index" json:"address_index"`
	Scheme         string    `gorm:"type:varchar(20);not null;default:'structured'" json:"scheme"` // legacy / structured 派生标注
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// DepositTransaction 观察到的充值交易
// 唯一键 (chain, network, asset, tx_hash, address)：同一笔链上交易可能同时
// 动原生币和代币，两条腿各记一行。pending -> confirmed 每行最多发生一次，
// 入账严格只挂在这次状态翻转上
type DepositTransaction struct {
	ID                    uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                uint64          `gorm:"not null;index" json:"user_id"`
	Chain                 string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_tx_natural" json:"chain"`
	Network               string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_tx_natural" json:"network"`
	Asset                 string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_tx_natural" json:"asset"`
	TxHash                string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_tx_natural" json:"tx_hash"`
	Address               string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_tx_natural" json:"address"`
	Amount                decimal.Decimal `gorm:"type:decimal(38,0);not null" json:"amount"` // 基础单位整数
	BlockHeight           uint64          `gorm:"not null" json:"block_height"`
	Confirmations         uint64          `gorm:"not null;default:0" json:"confirmations"`
	RequiredConfirmations uint64          `gorm:"not null" json:"required_confirmations"`
	Status                string          `gorm:"type:varchar(20);not null;index" json:"status"` // pending, confirmed, rejected
	CreatedAt             time.Time       `json:"created_at"`
	ConfirmedAt           *time.Time      `json:"confirmed_at,omitempty"`
}

// DepositTransaction 生命周期状态
const (
	DepositStatusPending   = "pending"
	DepositStatusConfirmed = "confirmed"
	DepositStatusRejected  = "rejected"
)

// ChainProgress 每条链的扫描游标
// LastHeight 只在该高度及以下全部交易落库后才前移
type ChainProgress struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Chain      string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_progress_natural" json:"chain"`
	Network    string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_progress_natural" json:"network"`
	Asset      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_progress_natural" json:"asset"`
	LastHeight uint64    `gorm:"not null;default:0" json:"last_height"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IdempotencyRequest 地址分配的幂等防线
// (user, idempotency_key) 唯一；Fingerprint 记请求体指纹，
// 同 key 不同请求体可以识别为冲突而不是静默复用
type IdempotencyRequest struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           uint64    `gorm:"not null;uniqueIndex:idx_idem_user_key" json:"user_id"`
	IdempotencyKey   string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_idem_user_key" json:"idempotency_key"`
	Fingerprint      string    `gorm:"type:varchar(64);not null" json:"-"`
	Status           string    `gorm:"type:varchar(20);not null" json:"status"` // pending, completed, failed
	DepositAddressID *uint64   `json:"deposit_address_id,omitempty"`
	FailCode         int       `gorm:"not null;default:0" json:"fail_code,omitempty"`
	FailReason       string    `gorm:"type:varchar(255)" json:"fail_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IdempotencyRequest 状态
const (
	IdempotencyStatusPending   = "pending"
	IdempotencyStatusCompleted = "completed"
	IdempotencyStatusFailed    = "failed"
)

// Account 资产账户表
// 核心设计: 引入 Version 字段实现乐观锁；Balance 为基础单位整数
type Account struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64          `gorm:"not null;uniqueIndex:idx_user_asset" json:"user_id"`
	Asset     string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_user_asset" json:"asset"`
	Balance   decimal.Decimal `gorm:"type:decimal(38,0);not null;default:0" json:"balance"`
	Version   uint64          `gorm:"not null;default:0" json:"version"` // 乐观锁版本号
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OutboxMessage 本地消息表 (Transactional Outbox)
type OutboxMessage struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Topic     string         `gorm:"type:varchar(255);not null" json:"topic"`
	Key       string         `gorm:"type:varchar(255)" json:"key"` // 分区键 (UserID)，保证同用户消息有序
	Payload   []byte         `gorm:"type:text;not null" json:"payload"`
	Status    string         `gorm:"type:varchar(50);not null;default:'PENDING';index" json:"status"` // PENDING, SENT, FAILED
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (MasterKey) TableName() string          { return "master_keys" }
func (WalletRoot) TableName() string         { return "wallet_roots" }
func (DepositAddress) TableName() string     { return "deposit_addresses" }
func (DepositTransaction) TableName() string { return "deposit_transactions" }
func (ChainProgress) TableName() string      { return "chain_progress" }
func (IdempotencyRequest) TableName() string { return "idempotency_requests" }
func (Account) TableName() string            { return "accounts" }
func (OutboxMessage) TableName() string      { return "outbox_messages" }
