package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Faultbox/stagedef/internal/report"
	"github.com/Faultbox/stagedef/pkg/stagedef"
)

type entry struct {
	sd       *stagedef.Stagedef
	report   *report.Report
	loadedAt time.Time
}

// Store keeps loaded stagedefs in memory, keyed by a random id.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Put stores sd with its report and returns the new id.
func (s *Store) Put(sd *stagedef.Stagedef, rep *report.Report, now time.Time) string {
	id := uuid.NewString()
	rep.ID = id

	s.mu.Lock()
	s.entries[id] = &entry{sd: sd, report: rep, loadedAt: now}
	s.mu.Unlock()
	return id
}

func (s *Store) get(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Summary identifies one stored stagedef.
type Summary struct {
	ID        string    `json:"id"`
	LoadedAt  time.Time `json:"loaded_at"`
	BlobBytes int       `json:"blob_bytes"`
}

// List returns every stored stagedef, oldest first.
func (s *Store) List() []Summary {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.entries))
	for id, e := range s.entries {
		out = append(out, Summary{ID: id, LoadedAt: e.loadedAt, BlobBytes: e.report.BlobBytes})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LoadedAt.Equal(out[j].LoadedAt) {
			return out[i].LoadedAt.Before(out[j].LoadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Delete removes id and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	return true
}

// Len returns the number of stored stagedefs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
