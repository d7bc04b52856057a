package sheet

import (
	"fmt"
	"sync"
	"time"
)

// Config holds the default remote source settings.
type Config struct {
	SpreadsheetID   string
	Range           string
	APIKey          string
	CredentialsFile string
	CSVURL          string

	RequestDelay time.Duration
	CacheTTL     time.Duration
}

// Ref names a grid source chosen by a caller. Empty fields fall back to Config.
type Ref struct {
	File          string
	SheetName     string
	SpreadsheetID string
	Range         string
	CSVURL        string
}

// Resolve picks a source for ref: a local file first, then a spreadsheet ID, then a CSV export URL.
// Remote sources are wrapped with the snapshot fallback when store is non-nil.
func Resolve(ref Ref, cfg Config, store *SnapshotStore) (Source, error) {
	if ref.File != "" {
		return FileSource{Path: ref.File, SheetName: ref.SheetName}, nil
	}

	var src Source
	switch {
	case ref.SpreadsheetID != "":
		src = GoogleSource{
			SpreadsheetID:   ref.SpreadsheetID,
			Range:           firstNonEmpty(ref.Range, cfg.Range),
			APIKey:          cfg.APIKey,
			CredentialsFile: cfg.CredentialsFile,
		}
	case ref.CSVURL != "":
		src = NewExportSource(ref.CSVURL, cfg.RequestDelay, cfg.CacheTTL)
	case cfg.SpreadsheetID != "":
		src = GoogleSource{
			SpreadsheetID:   cfg.SpreadsheetID,
			Range:           firstNonEmpty(ref.Range, cfg.Range),
			APIKey:          cfg.APIKey,
			CredentialsFile: cfg.CredentialsFile,
		}
	case cfg.CSVURL != "":
		src = NewExportSource(cfg.CSVURL, cfg.RequestDelay, cfg.CacheTTL)
	default:
		return nil, fmt.Errorf("no grid source given: set a file, spreadsheet ID or CSV export URL")
	}

	if store != nil {
		return CachedSource{Source: src, Store: store}, nil
	}
	return src, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Registry memoizes resolved sources so export caches and throttles survive across requests.
type Registry struct {
	cfg   Config
	store *SnapshotStore

	mu      sync.Mutex
	sources map[string]Source
}

// NewRegistry creates a registry resolving refs against cfg.
func NewRegistry(cfg Config, store *SnapshotStore) *Registry {
	return &Registry{
		cfg:     cfg,
		store:   store,
		sources: make(map[string]Source),
	}
}

// Source returns the memoized source for ref, resolving it on first use.
func (r *Registry) Source(ref Ref) (Source, error) {
	src, err := Resolve(ref, r.cfg, r.store)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sources[src.ID()]; ok {
		return existing, nil
	}
	r.sources[src.ID()] = src
	return src, nil
}
