package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfeld/wheelhouse/internal/models"
)

const headerLine = "Transaction History,Header,Date,Transaction Type,Symbol,Quantity,Price,Gross Amount,Commission,Net Amount,Description,Account"

func dataRow(fields ...string) string {
	return "Transaction History,Data," + strings.Join(fields, ",")
}

func export(rows ...string) string {
	return strings.Join(append([]string{headerLine}, rows...), "\n")
}

func TestAnalyze_EmptyInput(t *testing.T) {
	a := New(nil, nil)

	report, err := a.Analyze(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, report.Trades)
	assert.Zero(t, report.Summary.TotalTrades)
	assert.Empty(t, report.Accounts)
	assert.NotNil(t, report.FXRates)
}

func TestAnalyze_RoundTripAndReentry(t *testing.T) {
	a := New(nil, nil)

	raw := export(
		dataRow("2024-03-01", "Buy", "TEST", "100", "50", "-5000", "-5", "-5005", "open", "ACC1"),
		dataRow("2024-03-10", "Sell", "TEST", "-100", "55", "5500", "-5", "5495", "close", "ACC1"),
		dataRow("2024-03-20", "Buy", "TEST", "100", "52", "-5200", "-5", "-5205", "re-entry", "ACC1"),
		dataRow("2024-03-05", "Buy", "OTHER", "10", "20", "-200", "-1", "-201", "second group", "ACC2"),
		dataRow("2024-03-02", "Other", "AUD.USD", "1000", "0.65", "650", "0", "650", "forex", "ACC1"),
	)

	report, err := a.Analyze(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, report.Trades, 3)

	// Deterministic output: sorted by account then symbol, then index.
	assert.Equal(t, "ACC1", report.Trades[0].Account)
	assert.Equal(t, "TEST", report.Trades[0].Symbol)
	assert.Equal(t, 0, report.Trades[0].LifecycleIndex)
	assert.Equal(t, models.StatusClosed, report.Trades[0].Status)
	assert.Equal(t, 1, report.Trades[1].LifecycleIndex)
	assert.Equal(t, models.StatusOpen, report.Trades[1].Status)
	assert.Equal(t, 52.0, report.Trades[1].EntryPrice)
	assert.Equal(t, "OTHER", report.Trades[2].Symbol)

	assert.Equal(t, []string{"ACC1", "ACC2"}, report.Accounts)
	assert.Equal(t, 0.65, report.FXRates["AUD.USD"])

	s := report.Summary
	assert.Equal(t, 3, s.TotalTrades)
	assert.Equal(t, 2, s.OpenTrades)
	assert.Equal(t, 1, s.ClosedTrades)
	assert.InDelta(t, 100*52.0+10*20.0, s.TotalInvested, 1e-9)
}

func TestAnalyze_Idempotent(t *testing.T) {
	a := New(nil, nil)

	raw := export(
		dataRow("2024-03-01", "Buy", "TEST", "100", "50", "-5000", "-5", "-5005", "open", "ACC1"),
		dataRow("2024-03-05", "Sell", "TEST  251219C00055000", "-1", "2.00", "200", "-1", "199", "covered call", "ACC1"),
	)

	first, err := a.Analyze(context.Background(), raw)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), raw)
	require.NoError(t, err)

	require.Equal(t, len(first.Trades), len(second.Trades))
	for i := range first.Trades {
		ta, tb := first.Trades[i], second.Trades[i]
		// Transaction ids are generated per parse; blank them out.
		for j := range ta.Transactions {
			ta.Transactions[j].ID = ""
			tb.Transactions[j].ID = ""
		}
		ta.Transactions, tb.Transactions = nil, nil
		assert.Equal(t, ta, tb)
	}
	assert.Equal(t, first.Summary, second.Summary)
}

func TestAnalyze_LifecycleIndexesContiguous(t *testing.T) {
	a := New(nil, nil)

	raw := export(
		dataRow("2024-01-02", "Buy", "TEST", "100", "50", "-5000", "0", "-5000", "", "ACC1"),
		dataRow("2024-01-10", "Sell", "TEST", "-100", "51", "5100", "0", "5100", "", "ACC1"),
		dataRow("2024-02-02", "Buy", "TEST", "100", "52", "-5200", "0", "-5200", "", "ACC1"),
		dataRow("2024-02-10", "Sell", "TEST", "-100", "53", "5300", "0", "5300", "", "ACC1"),
		dataRow("2024-03-02", "Buy", "TEST", "100", "54", "-5400", "0", "-5400", "", "ACC1"),
	)

	report, err := a.Analyze(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, report.Trades, 3)
	for i, tr := range report.Trades {
		assert.Equal(t, i, tr.LifecycleIndex)
	}
}

func TestAnalyze_CoveredCallClassification(t *testing.T) {
	a := New(nil, nil)

	raw := export(
		dataRow("2024-03-01", "Buy", "TEST", "100", "50", "-5000", "-5", "-5005", "open", "ACC1"),
		dataRow("2024-03-05", "Sell", "TEST  251219C00055000", "-1", "2.00", "200", "-1", "199", "covered call", "ACC1"),
	)

	report, err := a.Analyze(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, report.Trades, 1)

	tr := report.Trades[0]
	assert.Equal(t, models.StrategyCoveredCall, tr.Strategy)
	assert.Equal(t, 55.0, tr.OptionStrike)
	assert.Equal(t, 200.0, tr.PremiumReceived)
	assert.InDelta(t, 48.06, tr.BreakEven, 1e-9)
}

func TestAnalyze_CanceledContext(t *testing.T) {
	a := New(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	raw := export(
		dataRow("2024-03-01", "Buy", "TEST", "100", "50", "-5000", "0", "-5000", "", "ACC1"),
	)
	_, err := a.Analyze(ctx, raw)
	assert.Error(t, err)
}
