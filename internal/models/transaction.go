// Package models provides the data structures for reconstructed trade lifecycles.
package models

import "time"

// TransactionType classifies a single export row.
type TransactionType string

const (
	TypeBuy        TransactionType = "Buy"
	TypeSell       TransactionType = "Sell"
	TypeAssignment TransactionType = "Assignment"
	TypeExercise   TransactionType = "Exercise"
	TypeForex      TransactionType = "Forex"
	TypeOther      TransactionType = "Other"
)

// OptionType distinguishes calls from puts.
type OptionType string

const (
	OptionCall OptionType = "Call"
	OptionPut  OptionType = "Put"
)

// OptionDetails holds the decoded fields of a packed option symbol.
type OptionDetails struct {
	Underlying string     `json:"underlying"`
	Expiry     time.Time  `json:"expiry"`
	Type       OptionType `json:"option_type"`
	Strike     float64    `json:"strike"`
}

// Transaction is one fill from the brokerage export, normalized into typed
// fields. Quantity is signed: positive increases the position, negative
// decreases it.
type Transaction struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	DateTime    time.Time       `json:"datetime"`
	Account     string          `json:"account,omitempty"`
	Description string          `json:"description,omitempty"`
	Type        TransactionType `json:"transaction_type"`
	Symbol      string          `json:"symbol"`
	Underlying  string          `json:"underlying_symbol"`
	IsOption    bool            `json:"is_option"`
	Option      *OptionDetails  `json:"option_details,omitempty"`
	Quantity    float64         `json:"quantity"`
	Price       float64         `json:"price"`
	GrossAmount float64         `json:"gross_amount"`
	Commission  float64         `json:"commission"`
	NetAmount   float64         `json:"net_amount"`
	Currency    string          `json:"currency"`
}

// IsStockLeg reports whether the transaction moves shares of the underlying
// rather than an option contract.
func (t *Transaction) IsStockLeg() bool {
	if t.IsOption {
		return false
	}
	switch t.Type {
	case TypeBuy, TypeSell, TypeAssignment, TypeExercise:
		return true
	default:
		return false
	}
}

// IsPutAssignment reports whether the transaction is shares delivered by a
// short put being assigned (or exercised against the account).
func (t *Transaction) IsPutAssignment() bool {
	return !t.IsOption && (t.Type == TypeAssignment || t.Type == TypeExercise) && t.Quantity > 0
}

// IsCallAssignment reports whether the transaction is shares called away by a
// short call being assigned.
func (t *Transaction) IsCallAssignment() bool {
	return !t.IsOption && (t.Type == TypeAssignment || t.Type == TypeExercise) && t.Quantity < 0
}

// IsCall reports whether the transaction is a call option leg.
func (t *Transaction) IsCall() bool {
	return t.IsOption && t.Option != nil && t.Option.Type == OptionCall
}

// IsPut reports whether the transaction is a put option leg.
func (t *Transaction) IsPut() bool {
	return t.IsOption && t.Option != nil && t.Option.Type == OptionPut
}
