package request

// CreateDepositAddressRequest 获取充值地址请求
// 幂等键必填，缺失直接拒绝而不是替调用方兜底生成
type CreateDepositAddressRequest struct {
	UserID         uint64 `json:"user_id" binding:"required"`
	Chain          string `json:"chain" binding:"required,supported_chain"`
	Network        string `json:"network" binding:"omitempty,oneof=mainnet testnet"` // 缺省取服务配置
	Asset          string `json:"asset" binding:"required"`
	IdempotencyKey string `json:"idempotency_key" binding:"required,max=128"`
}
