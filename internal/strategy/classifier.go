// Package strategy labels reconstructed lifecycles with the option structure
// they represent. Classification is a first-match-wins walk over an explicit
// ordered rule table so the decision logic stays auditable as a unit.
package strategy

import (
	"github.com/jfeld/wheelhouse/internal/lifecycle"
	"github.com/jfeld/wheelhouse/internal/models"
)

// Features is the leg partition a bucket classifies on.
type Features struct {
	Underlying string
	HasStock   bool
	CallBuys   int
	CallSells  int
	PutBuys    int
	PutSells   int
}

func (f Features) hasOptions() bool {
	return f.CallBuys+f.CallSells+f.PutBuys+f.PutSells > 0
}

// rule pairs a label with its predicate. Rules evaluate top to bottom.
type rule struct {
	label models.StrategyType
	match func(Features) bool
}

// Classifier labels buckets using configurable ETF and index allow-lists.
type Classifier struct {
	etfs    map[string]struct{}
	indexes map[string]struct{}
	rules   []rule
}

// NewClassifier builds a classifier over the given allow-lists.
func NewClassifier(etfs, indexes []string) *Classifier {
	c := &Classifier{
		etfs:    toSet(etfs),
		indexes: toSet(indexes),
	}
	c.rules = []rule{
		{models.StrategyCollar, func(f Features) bool {
			return f.HasStock && f.CallSells > 0 && f.PutBuys > 0
		}},
		{models.StrategyCoveredCall, func(f Features) bool {
			return f.HasStock && f.CallSells > 0
		}},
		{models.StrategyETF, func(f Features) bool {
			return f.HasStock && !f.hasOptions() && c.isETF(f.Underlying)
		}},
		{models.StrategyIndex, func(f Features) bool {
			return f.HasStock && !f.hasOptions() && c.isIndex(f.Underlying)
		}},
		{models.StrategyStock, func(f Features) bool {
			return f.HasStock && !f.hasOptions()
		}},
		{models.StrategyPMCC, func(f Features) bool {
			return !f.HasStock && f.CallBuys > 0 && f.CallSells > 0
		}},
		{models.StrategyNakedPut, func(f Features) bool {
			return !f.HasStock && f.PutSells > 0 && f.PutBuys == 0 && f.CallBuys == 0 && f.CallSells == 0
		}},
		{models.StrategyOption, func(f Features) bool {
			return !f.HasStock && f.hasOptions()
		}},
	}
	return c
}

// Classify returns the strategy label for a bucket.
func (c *Classifier) Classify(b *lifecycle.Bucket) models.StrategyType {
	return c.ClassifyFeatures(ExtractFeatures(b))
}

// ClassifyFeatures runs the rule table over a pre-computed leg partition.
func (c *Classifier) ClassifyFeatures(f Features) models.StrategyType {
	for _, r := range c.rules {
		if r.match(f) {
			return r.label
		}
	}
	return models.StrategyOther
}

// ExtractFeatures partitions a bucket's legs into the counts the rule table
// keys on.
func ExtractFeatures(b *lifecycle.Bucket) Features {
	f := Features{Underlying: b.Underlying}
	for i := range b.Transactions {
		tx := &b.Transactions[i]
		if tx.IsStockLeg() {
			f.HasStock = true
			continue
		}
		if !tx.IsOption || tx.Option == nil {
			continue
		}
		switch {
		case tx.IsCall() && tx.Quantity > 0:
			f.CallBuys++
		case tx.IsCall() && tx.Quantity < 0:
			f.CallSells++
		case tx.IsPut() && tx.Quantity > 0:
			f.PutBuys++
		case tx.IsPut() && tx.Quantity < 0:
			f.PutSells++
		}
	}
	return f
}

func (c *Classifier) isETF(symbol string) bool {
	_, ok := c.etfs[symbol]
	return ok
}

func (c *Classifier) isIndex(symbol string) bool {
	_, ok := c.indexes[symbol]
	return ok
}

func toSet(symbols []string) map[string]struct{} {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	return set
}
