package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfeld/wheelhouse/internal/models"
)

func testTrade(id string) models.Trade {
	return models.Trade{
		PositionInstanceID: id,
		Symbol:             "TEST",
		Account:            "ACC1",
		Status:             models.StatusOpen,
		Strategy:           models.StrategyStock,
		EntryPrice:         50,
		Shares:             100,
		FirstDate:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestUpsertAndGet(t *testing.T) {
	s, err := NewJSONStorage(filepath.Join(t.TempDir(), "trades.json"))
	require.NoError(t, err)

	tr := testTrade("TEST-2024-03-Entry-01")
	require.NoError(t, s.UpsertTrade(tr))

	got, ok := s.GetTrade(tr.PositionInstanceID)
	require.True(t, ok)
	assert.Equal(t, tr, got)

	// Upsert replaces in place.
	tr.Status = models.StatusClosed
	require.NoError(t, s.UpsertTrade(tr))
	got, _ = s.GetTrade(tr.PositionInstanceID)
	assert.Equal(t, models.StatusClosed, got.Status)
	assert.Len(t, s.Trades(), 1)
}

func TestUpsert_MissingIDRejected(t *testing.T) {
	s, err := NewJSONStorage(filepath.Join(t.TempDir(), "trades.json"))
	require.NoError(t, err)

	err = s.UpsertTrade(models.Trade{Symbol: "TEST"})
	assert.ErrorIs(t, err, ErrMissingInstanceID)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.json")

	s, err := NewJSONStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.UpsertTrade(testTrade("TEST-2024-03-Entry-01")))
	require.NoError(t, s.UpsertTrade(testTrade("TEST-2024-04-Entry-01")))
	require.NoError(t, s.Save())

	reloaded, err := NewJSONStorage(path)
	require.NoError(t, err)
	trades := reloaded.Trades()
	require.Len(t, trades, 2)
	// Deterministic id order.
	assert.Equal(t, "TEST-2024-03-Entry-01", trades[0].PositionInstanceID)
	assert.Equal(t, "TEST-2024-04-Entry-01", trades[1].PositionInstanceID)
}

func TestReplaceAll(t *testing.T) {
	s, err := NewJSONStorage(filepath.Join(t.TempDir(), "trades.json"))
	require.NoError(t, err)
	require.NoError(t, s.UpsertTrade(testTrade("OLD-2024-01-Entry-01")))

	require.NoError(t, s.ReplaceAll([]models.Trade{testTrade("NEW-2024-02-Entry-01")}))
	trades := s.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, "NEW-2024-02-Entry-01", trades[0].PositionInstanceID)

	assert.ErrorIs(t, s.ReplaceAll([]models.Trade{{}}), ErrMissingInstanceID)
}
