// Package fetch retrieves bibliographic records from upstream metadata
// services and maps them into BibTeX entries.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pybib/pybib/internal/bibtex"
	"github.com/pybib/pybib/internal/config"
	"github.com/pybib/pybib/internal/identifier"
)

// Fetcher retrieves the bibliographic record for one identifier.
type Fetcher interface {
	Fetch(ctx context.Context, id identifier.Identifier) (*bibtex.Entry, error)
}

// Registry dispatches identifiers to kind-specific fetchers through a fixed
// lookup table. Each kind has exactly one provider.
type Registry struct {
	fetchers map[identifier.Kind]Fetcher
}

// NewRegistry wires the default providers: doi.org for DOIs and the arXiv
// Atom API for arXiv IDs.
func NewRegistry(cfg *config.Config) *Registry {
	doi := NewDOIClient(cfg)
	return &Registry{
		fetchers: map[identifier.Kind]Fetcher{
			identifier.KindDOI:   doi,
			identifier.KindArXiv: NewArxivClient(cfg, doi),
		},
	}
}

// Register replaces the fetcher for a kind. Used by tests to substitute
// fake providers.
func (r *Registry) Register(kind identifier.Kind, f Fetcher) {
	r.fetchers[kind] = f
}

// Fetch dispatches to the fetcher registered for the identifier's kind.
func (r *Registry) Fetch(ctx context.Context, id identifier.Identifier) (*bibtex.Entry, error) {
	f, ok := r.fetchers[id.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, id.Kind)
	}
	return f.Fetch(ctx, id)
}

// getWithRetry performs a rate-limited GET with a bounded retry budget.
// Transient failures (network errors, timeouts, 429, 5xx) are retried with
// exponential backoff; 404 and other client errors fail immediately.
func getWithRetry(ctx context.Context, hc *http.Client, limiter *rate.Limiter, retries int, backoff time.Duration, url string, header http.Header) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, backoff<<(attempt-1)); err != nil {
				return nil, err
			}
		}
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", config.UserAgent)
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}

		resp, err := hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, err := readResponse(resp)
		if err == nil {
			return body, nil
		}
		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %v (after %d attempts)", ErrTransient, lastErr, retries+1)
}

func readResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrTransient, err)
	}
	return body, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
