// Package metrics derives the per-lifecycle financials from a segmented
// bucket: entry price, rolled premium, fees, breakeven, status, and the
// position instance identifier.
package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/jfeld/wheelhouse/internal/lifecycle"
	"github.com/jfeld/wheelhouse/internal/models"
	"github.com/jfeld/wheelhouse/internal/util"
)

const sharesPerContract = 100.0

// Compute builds the Trade record for one bucket. The strategy label comes
// from the classifier; now supplies the clock so DTE stays reproducible in
// tests.
func Compute(b *lifecycle.Bucket, strat models.StrategyType, now time.Time) models.Trade {
	txs := b.Transactions
	t := models.Trade{
		Transactions:   txs,
		Account:        b.Account,
		Symbol:         b.Underlying,
		Shares:         b.FinalShares,
		Strategy:       strat,
		LifecycleIndex: b.Index,
	}
	if len(txs) > 0 {
		t.FirstDate = txs[0].Date
		t.LastDate = txs[len(txs)-1].Date
	}
	t.DaysInTrade = util.CalendarDaysBetween(t.FirstDate, t.LastDate)

	t.EntryPrice, t.CSPPutStrike = entryPrice(b)
	t.PremiumReceived = premiumReceived(txs)
	t.TotalFees = totalFees(txs)
	t.BreakEven = breakEven(t.EntryPrice, t.PremiumReceived, t.TotalFees, t.Shares)
	t.Contracts = netContracts(txs)

	if leg := latestOptionLeg(txs); leg != nil {
		t.OptionStrike = leg.Option.Strike
		t.OptionExpiry = leg.Option.Expiry
	}
	t.DTE = t.DTEAt(now)

	t.Status, t.CloseReason = status(b)
	t.PositionInstanceID = instanceID(b.Underlying, t.FirstDate, b.Index, strat)
	return t
}

// entryPrice implements the entry rules keyed on how the bucket opens. A
// lifecycle whose first share-bearing row is a put assignment reports the
// short put strike (the assignment row's own price field is unreliable, and
// later averaging-down buys do not move the wheel entry). Buckets opened by
// stock buys use the weighted average over Buy rows (never
// net_amount/quantity, which is fee-distorted). LEAP-anchored buckets report
// the anchor call cost.
func entryPrice(b *lifecycle.Bucket) (float64, *float64) {
	if idx := openingStockLeg(b); idx >= 0 && b.Transactions[idx].IsPutAssignment() {
		if put := shortPutFor(b, idx); put != nil {
			strike := put.Option.Strike
			return strike, &strike
		}
		// No observable short put leg; the assignment row price is all we have.
		return b.Transactions[idx].Price, nil
	}

	var qty, cost float64
	for i := range b.Transactions {
		tx := &b.Transactions[i]
		if !tx.IsOption && tx.Type == models.TypeBuy && tx.Quantity > 0 {
			qty += tx.Quantity
			cost += tx.Quantity * tx.Price
		}
	}
	if qty > 0 {
		return cost / qty, nil
	}

	if b.Anchor != nil {
		return anchorCost(b), nil
	}
	return 0, nil
}

// openingStockLeg returns the index of the first share-bearing row, or -1 for
// pure-option buckets.
func openingStockLeg(b *lifecycle.Bucket) int {
	for i := range b.Transactions {
		if b.Transactions[i].IsStockLeg() {
			return i
		}
	}
	return -1
}

// shortPutFor locates the short put leg behind a Wheel assignment: the
// nearest put sell before the assignment, falling back to any put sell in
// the bucket.
func shortPutFor(b *lifecycle.Bucket, assignIdx int) *models.Transaction {
	for i := assignIdx - 1; i >= 0; i-- {
		tx := &b.Transactions[i]
		if tx.IsPut() && tx.Quantity < 0 {
			return tx
		}
	}
	for i := range b.Transactions {
		tx := &b.Transactions[i]
		if tx.IsPut() && tx.Quantity < 0 {
			return tx
		}
	}
	return nil
}

func anchorCost(b *lifecycle.Bucket) float64 {
	var qty, cost float64
	for i := range b.Transactions {
		tx := &b.Transactions[i]
		if tx.IsCall() && tx.Quantity > 0 &&
			tx.Option.Strike == b.Anchor.Strike && tx.Option.Expiry.Equal(b.Anchor.Expiry) {
			qty += tx.Quantity
			cost += tx.Quantity * tx.Price
		}
	}
	if qty == 0 {
		return 0
	}
	return cost / qty
}

// seriesKey identifies one option series for premium netting.
type seriesKey struct {
	strike float64
	typ    models.OptionType
	expiry time.Time
}

// premiumReceived nets option sell proceeds against buy-to-close cost across
// every roll cycle in the bucket. A buy counts against premium only to the
// extent it closes a short opened earlier in the same series; buy-to-open
// legs (LEAP anchors, protective puts) are position cost, not premium. Gross
// amounts are preferred; rows without one fall back to price * contracts * 100.
func premiumReceived(txs []models.Transaction) float64 {
	var total float64
	shortOpen := make(map[seriesKey]float64)
	for i := range txs {
		tx := &txs[i]
		if !tx.IsOption || tx.Option == nil {
			continue
		}
		key := seriesKey{strike: tx.Option.Strike, typ: tx.Option.Type, expiry: tx.Option.Expiry}
		amount := math.Abs(tx.GrossAmount)
		if amount == 0 {
			amount = math.Abs(tx.Quantity) * tx.Price * sharesPerContract
		}
		if tx.Quantity < 0 {
			total += amount
			shortOpen[key] += -tx.Quantity
			continue
		}
		if tx.Quantity > 0 && shortOpen[key] > 0 {
			closing := math.Min(tx.Quantity, shortOpen[key])
			total -= amount * closing / tx.Quantity
			shortOpen[key] -= closing
		}
	}
	return total
}

func totalFees(txs []models.Transaction) float64 {
	var total float64
	for i := range txs {
		total += math.Abs(txs[i].Commission)
	}
	return total
}

// breakEven guards the divide: share-less lifecycles report the entry price
// unmodified.
func breakEven(entry, premium, fees, shares float64) float64 {
	if shares == 0 {
		return entry
	}
	return util.RoundToTick(entry-premium/shares+fees/shares, 0.01)
}

func netContracts(txs []models.Transaction) int {
	var net float64
	for i := range txs {
		if txs[i].IsOption {
			net += txs[i].Quantity
		}
	}
	return int(math.Round(math.Abs(net)))
}

// latestOptionLeg returns the most recently dated option leg; later rows win
// date ties.
func latestOptionLeg(txs []models.Transaction) *models.Transaction {
	var latest *models.Transaction
	for i := range txs {
		tx := &txs[i]
		if !tx.IsOption || tx.Option == nil {
			continue
		}
		if latest == nil || !tx.Date.Before(latest.Date) {
			latest = tx
		}
	}
	return latest
}

func status(b *lifecycle.Bucket) (models.TradeStatus, string) {
	if !b.Sealed {
		return models.StatusOpen, ""
	}
	if b.CloseReason == lifecycle.CloseReasonAssigned {
		return models.StatusAssigned, b.CloseReason
	}
	return models.StatusClosed, b.CloseReason
}

// instanceID builds "{SYMBOL}-{YYYY}-{MM}-Entry-{NN}" from the first
// transaction date; PMCC lifecycles embed the PMCC token so parallel LEAP
// structures stay distinguishable.
func instanceID(symbol string, first time.Time, index int, strat models.StrategyType) string {
	if strat == models.StrategyPMCC {
		return fmt.Sprintf("%s-PMCC-%04d-%02d-Entry-%02d", symbol, first.Year(), int(first.Month()), index+1)
	}
	return fmt.Sprintf("%s-%04d-%02d-Entry-%02d", symbol, first.Year(), int(first.Month()), index+1)
}
