package storage

import "github.com/jfeld/wheelhouse/internal/models"

// Interface defines the contract for trade persistence. The engine itself
// never persists; callers hand reconstructed trades to an implementation of
// this interface.
//
// Implementations must be safe for concurrent use - callers can assume all
// methods are goroutine-safe. The provided JSONStorage implementation uses
// sync.RWMutex to serialize access.
type Interface interface {
	// UpsertTrade stores or replaces a trade keyed by its position
	// instance id.
	UpsertTrade(t models.Trade) error
	// GetTrade returns the stored trade for an id.
	GetTrade(id string) (models.Trade, bool)
	// Trades returns all stored trades in deterministic id order.
	Trades() []models.Trade
	// ReplaceAll swaps the full trade set in one call.
	ReplaceAll(trades []models.Trade) error

	// Data persistence
	Save() error
	Load() error
}

// NewStorage creates a new storage implementation (currently JSON-based).
func NewStorage(filepath string) (Interface, error) {
	return NewJSONStorage(filepath)
}

// Ensure JSONStorage implements Interface
var _ Interface = (*JSONStorage)(nil)
