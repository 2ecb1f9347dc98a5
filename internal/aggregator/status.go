package aggregator

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"price-desk/internal/domain"
	"price-desk/internal/recordstore"
)

const statusKey = "provider-status"

// StatusStore is the process-wide table of provider health. It survives
// restarts through the record store, so a status CLI run shows the result of
// the last check even before any provider is probed again.
type StatusStore struct {
	mu       sync.RWMutex
	statuses map[string]domain.ProviderStatus
	records  recordstore.Store
	logger   *slog.Logger
}

// NewStatusStore loads any persisted table from records. A nil records store
// keeps everything in memory.
func NewStatusStore(records recordstore.Store, logger *slog.Logger) *StatusStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &StatusStore{
		statuses: make(map[string]domain.ProviderStatus),
		records:  records,
		logger:   logger,
	}
	if records != nil {
		var saved []domain.ProviderStatus
		err := records.Load(statusKey, &saved)
		switch {
		case err == nil:
			for _, st := range saved {
				s.statuses[st.Name] = st
			}
		case errors.Is(err, recordstore.ErrNotFound):
			// first run
		default:
			logger.Warn("could not load persisted provider status", "error", err)
		}
	}
	return s
}

// Set replaces the entry for st.Name and persists the table.
func (s *StatusStore) Set(st domain.ProviderStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[st.Name] = st
	s.persistLocked()
}

// Update applies fn to the current entry for name (zero-valued if absent)
// and stores the result. Writes for the same provider serialize here.
func (s *StatusStore) Update(name string, fn func(st *domain.ProviderStatus)) domain.ProviderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.statuses[name]
	st.Name = name
	fn(&st)
	s.statuses[name] = st
	s.persistLocked()
	return st
}

func (s *StatusStore) Get(name string) (domain.ProviderStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[name]
	return st, ok
}

// All returns the table sorted by provider name.
func (s *StatusStore) All() []domain.ProviderStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ProviderStatus, 0, len(s.statuses))
	for _, st := range s.statuses {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *StatusStore) persistLocked() {
	if s.records == nil {
		return
	}
	out := make([]domain.ProviderStatus, 0, len(s.statuses))
	for _, st := range s.statuses {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if err := s.records.Save(statusKey, out); err != nil {
		s.logger.Warn("could not persist provider status", "error", err)
	}
}
