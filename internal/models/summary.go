package models

// StrategyBreakdown aggregates lifecycles sharing a strategy label.
type StrategyBreakdown struct {
	Count   int     `json:"count"`
	Premium float64 `json:"premium"`
}

// AccountBreakdown aggregates lifecycles per brokerage account.
type AccountBreakdown struct {
	Count    int     `json:"count"`
	Invested float64 `json:"invested"`
}

// Summary is the portfolio-level rollup over all reconstructed trades.
type Summary struct {
	TotalTrades   int                                `json:"total_trades"`
	OpenTrades    int                                `json:"open_trades"`
	ClosedTrades  int                                `json:"closed_trades"`
	TotalInvested float64                            `json:"total_invested"`
	TotalPremium  float64                            `json:"total_premium"`
	TotalFees     float64                            `json:"total_fees"`
	NetPremium    float64                            `json:"net_premium"`
	ByStrategy    map[StrategyType]StrategyBreakdown `json:"by_strategy"`
	ByAccount     map[string]AccountBreakdown        `json:"by_account"`
}
