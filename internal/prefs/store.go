package prefs

import (
	"fmt"
	"strings"
	"sync"

	"RatioChart/internal/model"
)

// Store guards the saved pair and writes every change through to disk.
type Store struct {
	mu       sync.Mutex
	prefs    *Prefs
	filePath string
}

// NewStore loads prefs from filePath, seeding empty fields from defaults.
// An empty filePath keeps prefs in memory only.
func NewStore(filePath string, defaults Prefs) (*Store, error) {
	p := &Prefs{}
	if filePath != "" {
		var err error
		if p, err = LoadPrefs(filePath); err != nil {
			return nil, fmt.Errorf("load prefs: %w", err)
		}
	}

	if p.SymbolA == "" {
		p.SymbolA = defaults.SymbolA
	}
	if p.SymbolB == "" {
		p.SymbolB = defaults.SymbolB
	}
	if p.Order == "" {
		p.Order = defaults.Order
	}
	if p.Order == "" {
		p.Order = model.OrderAOverB
	}

	return &Store{prefs: p, filePath: filePath}, nil
}

// Get returns a copy of the current prefs.
func (s *Store) Get() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.prefs
}

// SetPair saves a new pair. Symbols are upper-cased; both must be non-empty and distinct.
func (s *Store) SetPair(symbolA, symbolB string, order model.RatioOrder) error {
	symbolA = strings.ToUpper(strings.TrimSpace(symbolA))
	symbolB = strings.ToUpper(strings.TrimSpace(symbolB))
	if order == "" {
		order = model.OrderAOverB
	}
	req := model.Request{SymbolA: symbolA, SymbolB: symbolB, Order: order}
	if err := req.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.prefs
	next.SymbolA = symbolA
	next.SymbolB = symbolB
	next.Order = order
	if s.filePath != "" {
		if err := SavePrefs(s.filePath, &next); err != nil {
			return fmt.Errorf("save prefs: %w", err)
		}
	}
	s.prefs = &next
	return nil
}
