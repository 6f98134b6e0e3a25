// Command wheelhouse reconstructs trade lifecycles from a brokerage
// transaction export and prints the portfolio report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/jfeld/wheelhouse/internal/config"
	"github.com/jfeld/wheelhouse/internal/engine"
	"github.com/jfeld/wheelhouse/internal/models"
	"github.com/jfeld/wheelhouse/internal/storage"
)

func main() {
	var configPath, inputPath, storePath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file (optional)")
	flag.StringVar(&inputPath, "input", "", "Path to the brokerage transaction export")
	flag.StringVar(&storePath, "store", "", "Optional JSON trade store to update")
	flag.Parse()

	log := logrus.New()

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	log.SetLevel(cfg.LogLevel())

	if inputPath == "" {
		log.Fatal("missing -input: path to the transaction export")
	}
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		log.Fatalf("Failed to read export: %v", err)
	}

	analyzer := engine.New(cfg, log)
	report, err := analyzer.Analyze(context.Background(), string(raw))
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	printReport(os.Stdout, report)

	if storePath == "" && cfg.Storage.Path != "" {
		storePath = cfg.Storage.Path
	}
	if storePath != "" {
		store, err := storage.NewStorage(storePath)
		if err != nil {
			log.Fatalf("Failed to open trade store: %v", err)
		}
		if err := persistTrades(log, store, report.Trades); err != nil {
			log.Fatalf("Failed to save trade store: %v", err)
		}
		log.Infof("Saved %d trades to %s", len(report.Trades), storePath)
	}
}

// persistTrades upserts every trade and saves the store. Instance ids carry
// no account component, so the same symbol entered the same month in two
// accounts shares an id; overwriting across accounts is surfaced with a
// warning.
func persistTrades(log *logrus.Logger, store storage.Interface, trades []models.Trade) error {
	for _, t := range trades {
		if prev, ok := store.GetTrade(t.PositionInstanceID); ok && prev.Account != t.Account {
			log.WithFields(logrus.Fields{
				"instance": t.PositionInstanceID,
				"stored":   prev.Account,
				"incoming": t.Account,
			}).Warn("instance id collision across accounts, overwriting stored trade")
		}
		if err := store.UpsertTrade(t); err != nil {
			log.WithField("trade", t.PositionInstanceID).Warnf("skipping trade: %v", err)
		}
	}
	return store.Save()
}

// printReport renders trades and the summary verbatim; it is the presentation
// collaborator for CLI runs.
func printReport(w io.Writer, r *engine.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INSTANCE\tACCOUNT\tSYMBOL\tSTRATEGY\tSTATUS\tSHARES\tENTRY\tBREAK-EVEN\tPREMIUM\tFEES\tDAYS")
	for _, t := range r.Trades {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.0f\t%.2f\t%.2f\t%.2f\t%.2f\t%d\n",
			t.PositionInstanceID, t.Account, t.Symbol, t.Strategy, t.Status,
			t.Shares, t.EntryPrice, t.BreakEven, t.PremiumReceived, t.TotalFees, t.DaysInTrade)
	}
	tw.Flush()

	s := r.Summary
	fmt.Fprintf(w, "\nTrades: %d total, %d open, %d closed\n", s.TotalTrades, s.OpenTrades, s.ClosedTrades)
	fmt.Fprintf(w, "Invested: %.2f  Premium: %.2f  Fees: %.2f  Net premium: %.2f\n",
		s.TotalInvested, s.TotalPremium, s.TotalFees, s.NetPremium)
	if len(r.Accounts) > 0 {
		fmt.Fprintf(w, "Accounts: %v\n", r.Accounts)
	}
	for pair, rate := range r.FXRates {
		fmt.Fprintf(w, "FX %s: %.4f\n", pair, rate)
	}
}
