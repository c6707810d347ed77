package store

import (
	"errors"

	"waqf/internal/models"

	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("position not found")

// Store holds the seeded portfolio. It is read-only after New and safe for
// concurrent use without locking.
type Store struct {
	entries []models.PortfolioEntry
	log     *logrus.Logger
}

func New(entries []models.PortfolioEntry, log *logrus.Logger) *Store {
	cp := make([]models.PortfolioEntry, len(entries))
	copy(cp, entries)
	return &Store{entries: cp, log: log}
}

// All returns every entry in seed order, pending ones included.
func (s *Store) All() []models.PortfolioEntry {
	res := make([]models.PortfolioEntry, len(s.entries))
	copy(res, s.entries)
	return res
}

func (s *Store) Get(id string) (models.PortfolioEntry, error) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	s.log.Debugf("lookup of unknown position %q", id)
	return models.PortfolioEntry{}, ErrNotFound
}

// ActiveSymbols returns the distinct exchange symbols of non-pending entries,
// in first-seen order. Several tranches of one stock share a symbol.
func (s *Store) ActiveSymbols() []string {
	seen := map[string]bool{}
	res := []string{}
	for _, e := range s.entries {
		sym := e.Symbol()
		if e.Pending || sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		res = append(res, sym)
	}
	return res
}
