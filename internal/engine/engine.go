// Package engine wires the reconstruction pipeline: parse the raw export,
// group fills by (account, underlying), segment each group into lifecycles,
// classify and measure every lifecycle, and aggregate the portfolio summary.
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jfeld/wheelhouse/internal/config"
	"github.com/jfeld/wheelhouse/internal/lifecycle"
	"github.com/jfeld/wheelhouse/internal/metrics"
	"github.com/jfeld/wheelhouse/internal/models"
	"github.com/jfeld/wheelhouse/internal/parser"
	"github.com/jfeld/wheelhouse/internal/portfolio"
	"github.com/jfeld/wheelhouse/internal/strategy"
)

// Report is the full outcome of analyzing one export: every reconstructed
// trade, the portfolio summary, and the parser's side observations. It is
// plain data, ready for the persistence and presentation collaborators.
type Report struct {
	Trades   []models.Trade     `json:"trades"`
	Summary  models.Summary     `json:"summary"`
	Accounts []string           `json:"accounts"`
	FXRates  map[string]float64 `json:"fx_rates"`
}

// Analyzer runs the pipeline. One analyzer is safe for concurrent use; each
// Analyze call works on its own state.
type Analyzer struct {
	cfg        *config.Config
	log        *logrus.Logger
	parser     *parser.Parser
	classifier *strategy.Classifier
}

// New builds an analyzer. A nil config falls back to defaults and a nil
// logger to the standard logrus logger.
func New(cfg *config.Config, log *logrus.Logger) *Analyzer {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Analyzer{
		cfg:        cfg,
		log:        log,
		parser:     parser.New(log),
		classifier: strategy.NewClassifier(cfg.Symbols.ETFs, cfg.Symbols.Indexes),
	}
}

type groupKey struct {
	account    string
	underlying string
}

// Analyze reconstructs all trade lifecycles from raw export text. Malformed
// input degrades to an empty report; the only error paths are context
// cancellation.
func (a *Analyzer) Analyze(ctx context.Context, raw string) (*Report, error) {
	parsed := a.parser.Parse(raw)

	groups := make(map[groupKey][]models.Transaction)
	for _, tx := range parsed.Transactions {
		if tx.Type == models.TypeForex || tx.Underlying == "" {
			continue
		}
		k := groupKey{account: tx.Account, underlying: tx.Underlying}
		groups[k] = append(groups[k], tx)
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].account != keys[j].account {
			return keys[i].account < keys[j].account
		}
		return keys[i].underlying < keys[j].underlying
	})

	now := time.Now().UTC()
	results := make([][]models.Trade, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Analysis.MaxConcurrency)
	for i, k := range keys {
		i, k := i, k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buckets := lifecycle.Segment(k.account, k.underlying, groups[k])
			trades := make([]models.Trade, 0, len(buckets))
			for _, b := range buckets {
				label := a.classifier.Classify(b)
				trades = append(trades, metrics.Compute(b, label, now))
			}
			results[i] = trades
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var trades []models.Trade
	for _, r := range results {
		trades = append(trades, r...)
	}

	a.log.WithFields(logrus.Fields{
		"transactions": len(parsed.Transactions),
		"groups":       len(keys),
		"trades":       len(trades),
	}).Debug("analysis complete")

	return &Report{
		Trades:   trades,
		Summary:  portfolio.Aggregate(trades),
		Accounts: parsed.Accounts,
		FXRates:  parsed.FXRates,
	}, nil
}
