package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/jfeld/wheelhouse/internal/models"
)

// JSONStorage persists trades to a single JSON file. Writes go through a
// temp file and an atomic rename so a crash never leaves a torn store.
type JSONStorage struct {
	mu       sync.RWMutex
	filepath string
	data     *storeData
}

type storeData struct {
	Trades      map[string]models.Trade `json:"trades"`
	LastUpdated time.Time               `json:"last_updated"`
}

// NewJSONStorage opens (or initializes) a JSON trade store at filepath.
func NewJSONStorage(filepath string) (*JSONStorage, error) {
	s := &JSONStorage{
		filepath: filepath,
		data: &storeData{
			Trades: make(map[string]models.Trade),
		},
	}

	if _, err := os.Stat(filepath); err == nil {
		if err := s.Load(); err != nil {
			return nil, fmt.Errorf("loading storage: %w", err)
		}
	}

	return s, nil
}

// Load reads the store file from disk.
func (s *JSONStorage) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filepath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, &s.data); err != nil {
		return err
	}
	if s.data.Trades == nil {
		s.data.Trades = make(map[string]models.Trade)
	}
	return nil
}

// Save writes the store file to disk atomically.
func (s *JSONStorage) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *JSONStorage) saveLocked() error {
	s.data.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	tmpFile := s.filepath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpFile, s.filepath)
}

// UpsertTrade stores or replaces a trade keyed by its position instance id.
func (s *JSONStorage) UpsertTrade(t models.Trade) error {
	if t.PositionInstanceID == "" {
		return ErrMissingInstanceID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Trades[t.PositionInstanceID] = t
	return nil
}

// GetTrade returns the stored trade for an id.
func (s *JSONStorage) GetTrade(id string) (models.Trade, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.data.Trades[id]
	return t, ok
}

// Trades returns all stored trades sorted by id for deterministic output.
func (s *JSONStorage) Trades() []models.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data.Trades))
	for id := range s.data.Trades {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.Trade, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.data.Trades[id])
	}
	return out
}

// ReplaceAll swaps the full trade set in one call.
func (s *JSONStorage) ReplaceAll(trades []models.Trade) error {
	for i := range trades {
		if trades[i].PositionInstanceID == "" {
			return ErrMissingInstanceID
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Trades = make(map[string]models.Trade, len(trades))
	for _, t := range trades {
		s.data.Trades[t.PositionInstanceID] = t
	}
	return nil
}
