package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pybib/pybib/internal/bibtex"
	"github.com/pybib/pybib/internal/config"
	"github.com/pybib/pybib/internal/identifier"
)

// ArxivClient fetches bibliographic records from the arXiv Atom API. When a
// record carries a DOI, the published version is fetched through the DOI
// client and merged in; the arXiv record is the fallback if that fails.
type ArxivClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	retries    int
	backoff    time.Duration
	doi        *DOIClient
}

// NewArxivClient creates an arXiv API client. doi may be nil to disable
// published-version enrichment.
func NewArxivClient(cfg *config.Config, doi *DOIClient) *ArxivClient {
	return &ArxivClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		baseURL:    cfg.ArxivBaseURL,
		retries:    cfg.Retries,
		backoff:    cfg.Backoff,
		doi:        doi,
	}
}

// Atom response shapes. The arxiv.org/schemas/atom namespace carries the
// bibliographic extensions (DOI, journal reference, primary category).
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`

	DOI             string `xml:"http://arxiv.org/schemas/atom doi"`
	JournalRef      string `xml:"http://arxiv.org/schemas/atom journal_ref"`
	PrimaryCategory struct {
		Term string `xml:"term,attr"`
	} `xml:"http://arxiv.org/schemas/atom primary_category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// Fetch retrieves the Atom record for one arXiv ID.
func (c *ArxivClient) Fetch(ctx context.Context, id identifier.Identifier) (*bibtex.Entry, error) {
	arxivID := identifier.NormalizeArxiv(id.Value)
	if !identifier.IsValidArxiv(arxivID) {
		return nil, fmt.Errorf("%w: not a valid arXiv ID: %q", ErrParse, id.Value)
	}

	query := url.Values{}
	query.Set("id_list", arxivID)
	query.Set("max_results", "1")

	body, err := getWithRetry(ctx, c.httpClient, c.limiter, c.retries, c.backoff,
		c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("arxiv %s: %w", arxivID, err)
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("arxiv %s: %w: %v", arxivID, ErrParse, err)
	}
	record, err := feedRecord(feed)
	if err != nil {
		return nil, fmt.Errorf("arxiv %s: %w", arxivID, err)
	}

	entry := atomToEntry(record, arxivID)

	// Prefer the published version when the preprint names a DOI. Enrichment
	// is best effort: a failed DOI lookup falls back to the arXiv record.
	if record.DOI != "" && c.doi != nil {
		published, err := c.doi.Fetch(ctx, identifier.Identifier{
			Kind:  identifier.KindDOI,
			Value: record.DOI,
		})
		if err == nil {
			entry = mergePublished(published, entry)
		}
	}

	return entry, nil
}

// feedRecord extracts the single record from a query feed. The API signals
// unknown IDs with an empty feed or with an authorless error entry.
func feedRecord(feed atomFeed) (atomEntry, error) {
	if len(feed.Entries) == 0 {
		return atomEntry{}, ErrNotFound
	}
	record := feed.Entries[0]
	if len(record.Authors) == 0 || strings.Contains(record.ID, "api/errors") {
		return atomEntry{}, ErrNotFound
	}
	return record, nil
}

func atomToEntry(record atomEntry, arxivID string) *bibtex.Entry {
	entry := bibtex.NewEntry("article")

	names := make([]string, 0, len(record.Authors))
	for _, a := range record.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	entry.Set("author", strings.Join(names, " and "))
	entry.Set("title", record.Title)
	if year := publishedYear(record.Published); year != "" {
		entry.Set("year", year)
	}
	if record.JournalRef != "" {
		entry.Set("journal", record.JournalRef)
	}
	if record.DOI != "" {
		entry.Set("doi", record.DOI)
	}

	entry.Set("eprint", arxivID)
	entry.Set("archiveprefix", "arXiv")
	if identifier.IsNewStyleArxiv(arxivID) && record.PrimaryCategory.Term != "" {
		entry.Set("primaryclass", record.PrimaryCategory.Term)
	}
	entry.Set("url", "https://arxiv.org/abs/"+arxivID)

	return entry
}

func publishedYear(published string) string {
	t, err := time.Parse(time.RFC3339, published)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d", t.Year())
}

// mergePublished layers the preprint's arXiv fields onto the published
// record. Published metadata wins on shared fields; the eprint linkage
// always comes from the preprint.
func mergePublished(published, preprint *bibtex.Entry) *bibtex.Entry {
	merged := published.Clone()
	for _, f := range preprint.Fields() {
		if !merged.Has(f.Name) {
			merged.Set(f.Name, f.Value)
		}
	}
	for _, name := range []string{"eprint", "archiveprefix", "primaryclass"} {
		if v, ok := preprint.Get(name); ok && v != "" {
			merged.Set(name, v)
		}
	}
	return merged
}
