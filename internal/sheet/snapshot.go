package sheet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Snapshot is a grid as it was fetched from a source at a point in time.
type Snapshot struct {
	SourceID  string    `json:"sourceId"`
	FetchedAt time.Time `json:"fetchedAt"`
	Grid      Grid      `json:"grid"`
}

// SnapshotStore keeps the latest grid per source in memory and on disk.
type SnapshotStore struct {
	mu    sync.RWMutex
	dir   string
	grids map[string]Snapshot
}

// NewSnapshotStore creates a store persisting under dir. An empty dir keeps snapshots in memory only.
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{
		dir:   dir,
		grids: make(map[string]Snapshot),
	}
}

// Put records a fresh snapshot, replacing any previous one for the source.
func (s *SnapshotStore) Put(sourceID string, grid Grid, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grids[sourceID] = Snapshot{SourceID: sourceID, FetchedAt: fetchedAt, Grid: grid.Clone()}
}

// Get returns a copy of the snapshot for a source.
func (s *SnapshotStore) Get(sourceID string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.grids[sourceID]
	if !ok {
		return Snapshot{}, false
	}
	snap.Grid = snap.Grid.Clone()
	return snap, true
}

// Load reads the snapshot file for a source, if any.
func (s *SnapshotStore) Load(sourceID string) error {
	if s.dir == "" {
		return nil
	}
	data, err := os.ReadFile(s.path(sourceID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No cache yet, not an error
		}
		return fmt.Errorf("failed to open snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	s.mu.Lock()
	s.grids[sourceID] = snap
	s.mu.Unlock()

	log.Info().Str("source", sourceID).Int("rows", len(snap.Grid)).Msg("Loaded grid snapshot from cache")
	return nil
}

// Save persists the snapshot for a source with an atomic rename.
func (s *SnapshotStore) Save(sourceID string) error {
	if s.dir == "" {
		return nil
	}
	s.mu.RLock()
	snap, ok := s.grids[sourceID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	path := s.path(sourceID)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}

	log.Info().Str("source", sourceID).Int("rows", len(snap.Grid)).Msg("Grid snapshot saved to cache")
	return nil
}

func (s *SnapshotStore) path(sourceID string) string {
	return filepath.Join(s.dir, snapshotFileName(sourceID))
}

func snapshotFileName(sourceID string) string {
	var sb strings.Builder
	for _, r := range sourceID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String() + ".grid.json"
}

// CachedSource wraps a remote source with a snapshot fallback.
// Successful fetches refresh the snapshot; failed fetches serve the last snapshot when one exists.
type CachedSource struct {
	Source Source
	Store  *SnapshotStore
}

func (c CachedSource) ID() string { return c.Source.ID() }

func (c CachedSource) Fetch(ctx context.Context) (Grid, error) {
	id := c.Source.ID()
	grid, err := c.Source.Fetch(ctx)
	if err == nil {
		c.Store.Put(id, grid, time.Now())
		if saveErr := c.Store.Save(id); saveErr != nil {
			log.Warn().Err(saveErr).Str("source", id).Msg("Failed to persist grid snapshot")
		}
		return grid, nil
	}

	if _, ok := c.Store.Get(id); !ok {
		if loadErr := c.Store.Load(id); loadErr != nil {
			log.Warn().Err(loadErr).Str("source", id).Msg("Failed to load grid snapshot")
		}
	}
	snap, ok := c.Store.Get(id)
	if !ok {
		return nil, err
	}
	log.Warn().Err(err).Str("source", id).Time("fetchedAt", snap.FetchedAt).Msg("Source unavailable, serving cached snapshot")
	return snap.Grid, nil
}
