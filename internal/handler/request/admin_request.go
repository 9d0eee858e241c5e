package request

// VerifyMasterKeyRequest 主密钥备份抽查请求
// positions 与 words 按下标一一对应，位置从 1 开始。
// key_id 缺省取当前 active 主密钥
type VerifyMasterKeyRequest struct {
	KeyID     string   `json:"key_id" binding:"omitempty,max=64"`
	Positions []int    `json:"positions" binding:"required,min=1,max=24,dive,min=1,max=24"`
	Words     []string `json:"words" binding:"required,min=1,max=24,dive,required"`
}

// DecryptMasterKeyRequest 主密钥解密请求 (特权接口)
type DecryptMasterKeyRequest struct {
	KeyID string `json:"key_id" binding:"omitempty,max=64"`
}

// InitWalletRootsRequest 钱包根初始化请求
// chains 为空表示初始化全部支持的链
type InitWalletRootsRequest struct {
	KeyID  string   `json:"key_id" binding:"omitempty,max=64"`
	UserID uint64   `json:"user_id" binding:"required"`
	Chains []string `json:"chains" binding:"omitempty,dive,oneof=ETH BTC TRX XRP ADA"`
}
