package event

// DepositCreditedEvent 充值入账事件
// Topic: custody_events_deposit
// 仅在 pending -> confirmed 的那一次翻转时发出，下游可按此做余额通知
type DepositCreditedEvent struct {
	DepositID uint64 `json:"deposit_id"`
	UserID    uint64 `json:"user_id"`
	Chain     string `json:"chain"`
	Network   string `json:"network"`
	Asset     string `json:"asset"`
	Address   string `json:"address"`
	TxHash    string `json:"tx_hash"`
	Amount    string `json:"amount"` // 基础单位整数串
}

// DepositObservedEvent 首次观察到充值 (尚未确认)
// Topic: custody_events_deposit_pending
type DepositObservedEvent struct {
	DepositID     uint64 `json:"deposit_id"`
	UserID        uint64 `json:"user_id"`
	Chain         string `json:"chain"`
	TxHash        string `json:"tx_hash"`
	Amount        string `json:"amount"`
	Confirmations uint64 `json:"confirmations"`
	Required      uint64 `json:"required"`
}
