package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"rdelorme/pricewatcher/pkg/errors"

	"github.com/shopspring/decimal"
)

// Entry is the reduced price history kept per tracked entity: the last
// observed price plus running extrema. Invariant: MinPrice <= LastPrice
// <= MaxPrice.
type Entry struct {
	LastPrice   decimal.Decimal `json:"last_price"`
	MinPrice    decimal.Decimal `json:"min_price"`
	MaxPrice    decimal.Decimal `json:"max_price"`
	LastChecked time.Time       `json:"last_checked"`
	URL         string          `json:"url"`
}

// Store is the single mutable holder of per-entity price history for one
// run. It is not safe for concurrent writers; the drivers are sequential.
type Store struct {
	path    string
	entries map[string]Entry
}

// Open loads the ledger from path. A missing file is a fresh start, not
// an error; an unreadable or corrupt file is fatal.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]Entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.NewFormat(path, "failed to read ledger file", err)
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, errors.NewFormat(path, "failed to parse ledger file", err)
	}
	return s, nil
}

// Get returns the entry for an entity id
func (s *Store) Get(id string) (Entry, bool) {
	entry, ok := s.entries[id]
	return entry, ok
}

// Len returns the number of tracked entities with history
func (s *Store) Len() int {
	return len(s.entries)
}

// Record stores a new observation for an entity and returns the entry as
// it was before this call, so the caller can compare the observation
// against the pre-update state. The first observation for an entity
// bootstraps min and max to the observed price.
func (s *Store) Record(id string, price decimal.Decimal, url string, at time.Time) (prev Entry, existed bool) {
	prev, existed = s.entries[id]

	entry := Entry{
		LastPrice:   price,
		MinPrice:    price,
		MaxPrice:    price,
		LastChecked: at.UTC(),
		URL:         url,
	}
	if existed {
		entry.MinPrice = decimal.Min(prev.MinPrice, price)
		entry.MaxPrice = decimal.Max(prev.MaxPrice, price)
	}

	s.entries[id] = entry
	return prev, existed
}

// Save rewrites the ledger file wholesale. The write goes to a temp file
// in the same directory followed by a rename, so a crash mid-write never
// leaves a half-written ledger behind.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return errors.NewFormat(s.path, "failed to encode ledger", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return errors.NewFormat(s.path, "failed to create temp ledger file", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.NewFormat(s.path, "failed to write temp ledger file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.NewFormat(s.path, "failed to close temp ledger file", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return errors.NewFormat(s.path, "failed to replace ledger file", err)
	}
	return nil
}
