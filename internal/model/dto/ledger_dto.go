package dto

// QuotaInfo 用户当前额度视图，/status 命令返回
type QuotaInfo struct {
	Subscribed      bool    `json:"subscribed"`
	FreeDailyLimit  int     `json:"free_daily_limit"`
	FreeUsedToday   int     `json:"free_used_today"`
	FreeRemain      int     `json:"free_remain"`
	BudgetRemaining float64 `json:"budget_remaining"`
	ExpiresAt       string  `json:"expires_at,omitempty"`
}

// LedgerStats 全量账本统计，跨账户读取允许非一致快照
type LedgerStats struct {
	TotalAccounts      int64   `json:"total_accounts"`
	SubscribedAccounts int64   `json:"subscribed_accounts"`
	FreeUsedToday      int64   `json:"free_used_today"`
	TotalSpent         float64 `json:"total_spent"`
}
