package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/pybib/pybib/internal/bibtex"
	"github.com/pybib/pybib/internal/config"
	"github.com/pybib/pybib/internal/identifier"
)

// doiAcceptHeader requests a BibTeX rendering through the DOI content
// negotiation service.
const doiAcceptHeader = "text/bibliography; style=bibtex"

// acceptedDOIFields is the vocabulary kept from a DOI response. The
// resolver pads records with registration metadata we do not want.
var acceptedDOIFields = []string{
	"author", "title", "journal", "booktitle", "volume", "number",
	"pages", "year", "month", "publisher", "isbn", "url", "doi",
}

// DOIClient resolves DOIs to BibTeX records via doi.org content
// negotiation.
type DOIClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	retries    int
	backoff    time.Duration
}

// NewDOIClient creates a DOI resolver client from the given config.
func NewDOIClient(cfg *config.Config) *DOIClient {
	return &DOIClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		baseURL:    cfg.DOIBaseURL,
		retries:    cfg.Retries,
		backoff:    cfg.Backoff,
	}
}

// Fetch resolves one DOI and parses the returned BibTeX record.
func (c *DOIClient) Fetch(ctx context.Context, id identifier.Identifier) (*bibtex.Entry, error) {
	doi := identifier.NormalizeDOI(id.Value)
	if !identifier.IsValidDOI(doi) {
		return nil, fmt.Errorf("%w: not a valid DOI: %q", ErrParse, id.Value)
	}

	header := http.Header{}
	header.Set("Accept", doiAcceptHeader)

	body, err := getWithRetry(ctx, c.httpClient, c.limiter, c.retries, c.backoff,
		c.baseURL+"/"+url.PathEscape(doi), header)
	if err != nil {
		return nil, fmt.Errorf("doi %s: %w", doi, err)
	}

	records, err := bibtex.ParseRecords(string(body))
	if err != nil {
		return nil, fmt.Errorf("doi %s: %w: %v", doi, ErrParse, err)
	}

	entry := filterFields(records[0], acceptedDOIFields)
	// The resolver sometimes echoes the DOI in URL form; pin the canonical
	// value we resolved.
	entry.Set("doi", doi)

	return entry, nil
}

// filterFields copies the record keeping only the accepted vocabulary.
func filterFields(e *bibtex.Entry, accepted []string) *bibtex.Entry {
	keep := make(map[string]bool, len(accepted))
	for _, name := range accepted {
		keep[name] = true
	}

	out := bibtex.NewEntry(e.Type)
	out.Key = e.Key
	for _, f := range e.Fields() {
		if keep[f.Name] {
			out.Set(f.Name, f.Value)
		}
	}
	return out
}
