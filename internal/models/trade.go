package models

import "time"

// TradeStatus represents the terminal or live state of a lifecycle.
type TradeStatus string

const (
	StatusOpen     TradeStatus = "open"     // Lifecycle still holds exposure
	StatusClosed   TradeStatus = "closed"   // Exposure exhausted by sale or netting
	StatusAssigned TradeStatus = "assigned" // Shares called away by assignment
)

// StrategyType labels the option structure reconstructed for a lifecycle.
type StrategyType string

const (
	StrategyStock       StrategyType = "STOCK"
	StrategyETF         StrategyType = "ETF"
	StrategyIndex       StrategyType = "INDEX"
	StrategyCoveredCall StrategyType = "COVERED_CALL"
	StrategyCollar      StrategyType = "COLLAR"
	StrategyPMCC        StrategyType = "PMCC"
	StrategyNakedPut    StrategyType = "NAKED_PUT"
	StrategyOption      StrategyType = "OPTION"
	StrategyOther       StrategyType = "OTHER"
)

// Trade is one reconstructed position lifecycle: an ordered run of
// transactions on a single (account, underlying) pair from entry to close.
type Trade struct {
	Transactions       []Transaction `json:"transactions"`
	Account            string        `json:"account,omitempty"`
	Symbol             string        `json:"symbol"`
	EntryPrice         float64       `json:"entry_price"`
	CSPPutStrike       *float64      `json:"csp_put_strike,omitempty"`
	PremiumReceived    float64       `json:"premium_received"`
	TotalFees          float64       `json:"total_fees"`
	BreakEven          float64       `json:"break_even"`
	Shares             float64       `json:"shares"`
	Contracts          int           `json:"contracts"`
	OptionStrike       float64       `json:"option_strike,omitempty"`
	OptionExpiry       time.Time     `json:"option_expiry"`
	Status             TradeStatus   `json:"status"`
	CloseReason        string        `json:"close_reason,omitempty"`
	Strategy           StrategyType  `json:"strategy_type"`
	PositionInstanceID string        `json:"position_instance_id"`
	LifecycleIndex     int           `json:"lifecycle_index"`
	DaysInTrade        int           `json:"days_in_trade"`
	FirstDate          time.Time     `json:"first_date"`
	LastDate           time.Time     `json:"last_date"`
	// DTE is derived; avoid persisting to prevent staleness
	DTE int `json:"-"`
}

// IsOpen reports whether the lifecycle still holds exposure.
func (t *Trade) IsOpen() bool {
	return t.Status == StatusOpen
}

// CalculateDTE calculates and returns the days to expiration of the latest
// option leg, clamped at zero.
func (t *Trade) CalculateDTE() int {
	return t.DTEAt(time.Now().UTC())
}

// DTEAt returns days to expiration relative to the supplied clock.
func (t *Trade) DTEAt(now time.Time) int {
	if t.OptionExpiry.IsZero() {
		return 0
	}
	day := now.UTC().Truncate(24 * time.Hour)
	exp := t.OptionExpiry.UTC().Truncate(24 * time.Hour)
	days := int(exp.Sub(day).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// UnrealizedPnL derives the open profit for a share-holding lifecycle given a
// current price supplied by the quote collaborator. The engine itself never
// fetches prices.
func (t *Trade) UnrealizedPnL(currentPrice float64) float64 {
	if !t.IsOpen() || t.Shares == 0 {
		return 0
	}
	return (currentPrice-t.EntryPrice)*t.Shares + t.PremiumReceived - t.TotalFees
}
