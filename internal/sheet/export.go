package sheet

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ExportSource downloads a published CSV export (e.g. "File > Share > Publish to web").
// Responses are cached per URL with a sliding TTL and requests are throttled.
type ExportSource struct {
	URL string

	requestDelay time.Duration
	ttl          time.Duration
	httpClient   *http.Client

	mu          sync.Mutex
	lastRequest time.Time
	cached      *cacheEntry
}

type cacheEntry struct {
	Value       Grid
	Expiration  time.Time
	AccessCount int
	OriginalTTL time.Duration
}

// NewExportSource creates a CSV export source. Zero durations disable throttling or caching.
func NewExportSource(url string, requestDelay, ttl time.Duration) *ExportSource {
	return &ExportSource{
		URL:          url,
		requestDelay: requestDelay,
		ttl:          ttl,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

func (e *ExportSource) ID() string {
	return "csv:" + e.URL
}

func (e *ExportSource) Fetch(ctx context.Context) (Grid, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if grid, ok := e.fromCache(); ok {
		return grid.Clone(), nil
	}

	if err := e.throttle(ctx); err != nil {
		return nil, err
	}

	log.Info().Str("url", e.URL).Msg("Requesting published CSV export")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("export %s is not public (%d); publish the sheet or use a spreadsheet ID", e.URL, resp.StatusCode)
		case http.StatusNotFound:
			return nil, fmt.Errorf("export %s not found (404)", e.URL)
		case http.StatusTooManyRequests:
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				return nil, fmt.Errorf("export rate limit exceeded (429), retry after %s seconds", retryAfter)
			}
			return nil, fmt.Errorf("export rate limit exceeded (429)")
		default:
			return nil, fmt.Errorf("export returned status %d", resp.StatusCode)
		}
	}

	grid, err := ReadCSV(resp.Body, ',')
	if err != nil {
		return nil, fmt.Errorf("failed to decode CSV export: %w", err)
	}

	e.store(grid)
	return grid.Clone(), nil
}

func (e *ExportSource) fromCache() (Grid, bool) {
	entry := e.cached
	if entry == nil {
		log.Debug().Str("url", e.URL).Msg("Cache miss")
		return nil, false
	}
	if time.Now().After(entry.Expiration) {
		e.cached = nil
		return nil, false
	}
	log.Debug().Str("url", e.URL).Msg("Cache hit")

	// Sliding window extension, capped so a hot cache still refreshes eventually.
	if entry.AccessCount < 6 {
		entry.Expiration = time.Now().Add(entry.OriginalTTL)
		entry.AccessCount++
		log.Trace().Str("url", e.URL).Int("count", entry.AccessCount).Msg("Extended cache TTL")
	}
	return entry.Value, true
}

func (e *ExportSource) store(grid Grid) {
	if e.ttl <= 0 {
		return
	}
	e.cached = &cacheEntry{
		Value:       grid,
		Expiration:  time.Now().Add(e.ttl),
		OriginalTTL: e.ttl,
		AccessCount: 1,
	}
	log.Debug().Str("url", e.URL).Dur("ttl", e.ttl).Msg("Added to cache")
}

func (e *ExportSource) throttle(ctx context.Context) error {
	elapsed := time.Since(e.lastRequest)
	if !e.lastRequest.IsZero() && elapsed < e.requestDelay {
		wait := e.requestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling export request")
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	e.lastRequest = time.Now()
	return nil
}
