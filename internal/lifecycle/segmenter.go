// Package lifecycle segments the transactions of one (account, underlying)
// pair into discrete position episodes. A single forward pass maintains the
// running share and contract exposure; buckets seal in place when exposure
// reaches exactly zero and a re-entry always starts a fresh bucket with the
// next index.
package lifecycle

import (
	"math"
	"sort"
	"time"

	"github.com/jfeld/wheelhouse/internal/models"
)

// Close reasons recorded on sealed buckets.
const (
	CloseReasonSold     = "Sold"
	CloseReasonAssigned = "Assigned"
)

// zeroTolerance absorbs float drift when summing signed quantities.
const zeroTolerance = 1e-6

// Bucket is one position episode: an ordered run of transactions belonging
// to the same lifecycle. Sealed buckets are immutable.
type Bucket struct {
	Account      string
	Underlying   string
	Index        int
	Transactions []models.Transaction
	Sealed       bool
	CloseReason  string
	// Anchor identifies the long LEAP call owning a pure-option bucket.
	Anchor      *models.OptionDetails
	FinalShares float64
}

// scanState makes the segmentation state machine explicit: either no episode
// is open, or exactly one is accumulating transactions.
type scanState int

const (
	stateNoPosition scanState = iota
	stateOpen
)

// Segment splits the transactions of one (account, underlying) pair into
// ordered lifecycle buckets. Input order is normalized to chronological with
// a stable sort; forex conversion rows are skipped entirely.
func Segment(account, underlying string, txs []models.Transaction) []*Bucket {
	filtered := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == models.TypeForex {
			continue
		}
		filtered = append(filtered, tx)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.Before(filtered[j].Date)
	})
	if len(filtered) == 0 {
		return nil
	}

	if hasStockLegs(filtered) {
		return segmentStock(account, underlying, filtered)
	}
	return segmentOptions(account, underlying, filtered)
}

func hasStockLegs(txs []models.Transaction) bool {
	for i := range txs {
		if txs[i].IsStockLeg() {
			return true
		}
	}
	return false
}

// stockScan carries the forward-pass state for share-bearing lifecycles.
type stockScan struct {
	account    string
	underlying string
	state      scanState
	shares     float64
	current    *Bucket
	buckets    []*Bucket
}

func segmentStock(account, underlying string, txs []models.Transaction) []*Bucket {
	s := &stockScan{account: account, underlying: underlying}
	for _, tx := range txs {
		s.step(tx)
	}
	if s.current != nil {
		s.current.FinalShares = s.shares
	}
	return s.buckets
}

// step applies the segmentation rules to one transaction: open a bucket if
// none is open, append unconditionally, update the running share count, and
// seal when share exposure transitions to exactly zero. Put assignments keep
// the current bucket open (Wheel continuity); call assignments that zero the
// position seal it as Assigned.
func (s *stockScan) step(tx models.Transaction) {
	if s.state == stateNoPosition {
		s.open()
	}
	s.current.Transactions = append(s.current.Transactions, tx)

	if !tx.IsStockLeg() {
		return
	}

	before := s.shares
	s.shares += tx.Quantity
	if math.Abs(s.shares) < zeroTolerance {
		s.shares = 0
	}
	if before == 0 || s.shares != 0 {
		return
	}

	switch {
	case tx.IsCallAssignment():
		s.seal(CloseReasonAssigned)
	case tx.Type == models.TypeSell:
		s.seal(CloseReasonSold)
	}
}

func (s *stockScan) open() {
	b := &Bucket{Account: s.account, Underlying: s.underlying, Index: len(s.buckets)}
	s.buckets = append(s.buckets, b)
	s.current = b
	s.state = stateOpen
}

func (s *stockScan) seal(reason string) {
	s.current.Sealed = true
	s.current.CloseReason = reason
	s.current.FinalShares = 0
	s.current = nil
	s.state = stateNoPosition
}

// legKey identifies one option series within a group.
type legKey struct {
	strike float64
	typ    models.OptionType
	expiry time.Time
}

// anchorBucket tracks a bucket owned by a long LEAP call, including the net
// exposure of the anchor itself and of short calls written against it.
type anchorBucket struct {
	bucket   *Bucket
	key      legKey
	net      float64
	shortNet map[legKey]float64
}

// optionScan segments groups where stock was never owned. Each distinct long
// call purchase anchors its own bucket; short calls attach to a compatible
// anchor; everything else collects in a residual bucket that closes when all
// of its per-series exposure nets to zero.
type optionScan struct {
	account     string
	underlying  string
	buckets     []*Bucket
	anchors     []*anchorBucket
	residual    *Bucket
	residualNet map[legKey]float64
}

func segmentOptions(account, underlying string, txs []models.Transaction) []*Bucket {
	s := &optionScan{
		account:     account,
		underlying:  underlying,
		residualNet: make(map[legKey]float64),
	}
	for _, tx := range txs {
		s.step(tx)
	}
	return s.buckets
}

func (s *optionScan) step(tx models.Transaction) {
	if !tx.IsOption || tx.Option == nil {
		s.appendResidual(tx, legKey{}, 0)
		return
	}
	key := legKey{strike: tx.Option.Strike, typ: tx.Option.Type, expiry: tx.Option.Expiry}

	switch {
	case tx.IsCall() && tx.Quantity > 0:
		s.applyCallBuy(tx, key)
	case tx.IsCall() && tx.Quantity < 0:
		s.applyCallSell(tx, key)
	default:
		s.appendResidual(tx, key, tx.Quantity)
	}
}

// applyCallBuy either extends an existing anchor, closes a short call rolled
// inside an anchor bucket, or establishes a brand new anchor.
func (s *optionScan) applyCallBuy(tx models.Transaction, key legKey) {
	if a := s.anchorByKey(key); a != nil {
		a.bucket.Transactions = append(a.bucket.Transactions, tx)
		a.net += tx.Quantity
		return
	}
	if a := s.anchorHoldingShort(key); a != nil {
		// Buy-to-close of a short call attached to this anchor.
		a.bucket.Transactions = append(a.bucket.Transactions, tx)
		a.shortNet[key] += tx.Quantity
		if math.Abs(a.shortNet[key]) < zeroTolerance {
			delete(a.shortNet, key)
		}
		return
	}

	b := &Bucket{
		Account:    s.account,
		Underlying: s.underlying,
		Index:      len(s.buckets),
		Anchor:     tx.Option,
	}
	b.Transactions = append(b.Transactions, tx)
	s.buckets = append(s.buckets, b)
	s.anchors = append(s.anchors, &anchorBucket{
		bucket:   b,
		key:      key,
		net:      tx.Quantity,
		shortNet: make(map[legKey]float64),
	})
}

// applyCallSell closes anchor exposure when the series matches an open
// anchor, otherwise attaches as a financed short call when the strike sits
// above the anchor strike and the expiry precedes the anchor expiry.
func (s *optionScan) applyCallSell(tx models.Transaction, key legKey) {
	if a := s.anchorByKey(key); a != nil {
		a.bucket.Transactions = append(a.bucket.Transactions, tx)
		a.net += tx.Quantity
		if math.Abs(a.net) < zeroTolerance {
			a.bucket.Sealed = true
			a.bucket.CloseReason = CloseReasonSold
		}
		return
	}
	if a := s.anchorForShortCall(key); a != nil {
		// The bucket stays open through short-call rolls; only closing the
		// anchor itself seals it.
		a.bucket.Transactions = append(a.bucket.Transactions, tx)
		a.shortNet[key] += tx.Quantity
		return
	}
	s.appendResidual(tx, key, tx.Quantity)
}

func (s *optionScan) anchorByKey(key legKey) *anchorBucket {
	for _, a := range s.anchors {
		if !a.bucket.Sealed && a.key == key {
			return a
		}
	}
	return nil
}

func (s *optionScan) anchorHoldingShort(key legKey) *anchorBucket {
	for _, a := range s.anchors {
		if !a.bucket.Sealed && a.shortNet[key] < 0 {
			return a
		}
	}
	return nil
}

// anchorForShortCall finds the anchor a short call attaches to. Among
// compatible anchors, ones not already financing an open short leg win, so
// parallel LEAPs each pair with their own short.
func (s *optionScan) anchorForShortCall(key legKey) *anchorBucket {
	var fallback *anchorBucket
	for _, a := range s.anchors {
		if a.bucket.Sealed {
			continue
		}
		if key.strike <= a.key.strike || !key.expiry.Before(a.key.expiry) {
			continue
		}
		if !a.hasOpenShort() {
			return a
		}
		if fallback == nil {
			fallback = a
		}
	}
	return fallback
}

func (a *anchorBucket) hasOpenShort() bool {
	for _, net := range a.shortNet {
		if net < 0 {
			return true
		}
	}
	return false
}

func (s *optionScan) appendResidual(tx models.Transaction, key legKey, qty float64) {
	if s.residual == nil {
		s.residual = &Bucket{Account: s.account, Underlying: s.underlying, Index: len(s.buckets)}
		s.buckets = append(s.buckets, s.residual)
	}
	s.residual.Transactions = append(s.residual.Transactions, tx)
	if qty == 0 {
		return
	}
	s.residualNet[key] += qty
	if math.Abs(s.residualNet[key]) < zeroTolerance {
		delete(s.residualNet, key)
	}
	if len(s.residualNet) == 0 {
		s.residual.Sealed = true
		s.residual.CloseReason = CloseReasonSold
		s.residual = nil
	}
}
