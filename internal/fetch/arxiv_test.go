package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pybib/pybib/internal/identifier"
)

func arxivID(value string) identifier.Identifier {
	return identifier.Identifier{Kind: identifier.KindArXiv, Value: value}
}

const atomHeader = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">`

const atomPreprint = atomHeader + `
  <entry>
    <id>http://arxiv.org/abs/2106.15928v2</id>
    <published>2021-06-30T17:59:23Z</published>
    <title>Qubit Readout with Fast Feedback</title>
    <author><name>Jane Doe</name></author>
    <author><name>John Smith</name></author>
    <arxiv:primary_category term="quant-ph"/>
  </entry>
</feed>`

const atomPublished = atomHeader + `
  <entry>
    <id>http://arxiv.org/abs/2106.15928v2</id>
    <published>2021-06-30T17:59:23Z</published>
    <title>Qubit Readout with Fast Feedback</title>
    <author><name>Jane Doe</name></author>
    <arxiv:primary_category term="quant-ph"/>
    <arxiv:doi>10.22331/q-2021-04-26-438</arxiv:doi>
    <arxiv:journal_ref>Quantum 5, 438 (2021)</arxiv:journal_ref>
  </entry>
</feed>`

const atomEmpty = atomHeader + `
</feed>`

func arxivServer(t *testing.T, feed string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id_list"); got == "" {
			t.Errorf("missing id_list in query %q", r.URL.RawQuery)
		}
		w.Write([]byte(feed))
	}))
}

func TestArxivFetch(t *testing.T) {
	srv := arxivServer(t, atomPreprint)
	defer srv.Close()

	cfg := testConfig()
	cfg.ArxivBaseURL = srv.URL

	entry, err := NewArxivClient(cfg, nil).Fetch(context.Background(), arxivID("arXiv:2106.15928v2"))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	wantFields := map[string]string{
		"author":        "Jane Doe and John Smith",
		"title":         "Qubit Readout with Fast Feedback",
		"year":          "2021",
		"eprint":        "2106.15928",
		"archiveprefix": "arXiv",
		"primaryclass":  "quant-ph",
		"url":           "https://arxiv.org/abs/2106.15928",
	}
	for name, want := range wantFields {
		if got, _ := entry.Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if entry.Has("journal") || entry.Has("doi") {
		t.Errorf("preprint without DOI grew extra fields: %v", entry.Fields())
	}
}

func TestArxivFetchNotFound(t *testing.T) {
	srv := arxivServer(t, atomEmpty)
	defer srv.Close()

	cfg := testConfig()
	cfg.ArxivBaseURL = srv.URL

	_, err := NewArxivClient(cfg, nil).Fetch(context.Background(), arxivID("2222.99999"))
	if !IsNotFound(err) {
		t.Errorf("err = %v, want not-found", err)
	}
}

func TestArxivFetchDOIEnrichment(t *testing.T) {
	arxivSrv := arxivServer(t, atomPublished)
	defer arxivSrv.Close()

	doiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`@article{Doe_2021,
  author = {Doe, Jane},
  title = {Qubit Readout with Fast Feedback},
  journal = {Quantum},
  volume = {5},
  pages = {438},
  year = {2021},
}`))
	}))
	defer doiSrv.Close()

	cfg := testConfig()
	cfg.ArxivBaseURL = arxivSrv.URL
	cfg.DOIBaseURL = doiSrv.URL

	client := NewArxivClient(cfg, NewDOIClient(cfg))
	entry, err := client.Fetch(context.Background(), arxivID("2106.15928"))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// Published metadata wins on shared fields.
	if v, _ := entry.Get("journal"); v != "Quantum" {
		t.Errorf("journal = %q, want the published journal", v)
	}
	if v, _ := entry.Get("doi"); v != "10.22331/q-2021-04-26-438" {
		t.Errorf("doi = %q", v)
	}
	// The preprint linkage survives the merge.
	if v, _ := entry.Get("eprint"); v != "2106.15928" {
		t.Errorf("eprint = %q", v)
	}
	if v, _ := entry.Get("archiveprefix"); v != "arXiv" {
		t.Errorf("archiveprefix = %q", v)
	}
	if v, _ := entry.Get("primaryclass"); v != "quant-ph" {
		t.Errorf("primaryclass = %q", v)
	}
}

func TestArxivFetchEnrichmentFailureFallsBack(t *testing.T) {
	arxivSrv := arxivServer(t, atomPublished)
	defer arxivSrv.Close()

	doiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer doiSrv.Close()

	cfg := testConfig()
	cfg.ArxivBaseURL = arxivSrv.URL
	cfg.DOIBaseURL = doiSrv.URL

	client := NewArxivClient(cfg, NewDOIClient(cfg))
	entry, err := client.Fetch(context.Background(), arxivID("2106.15928"))
	if err != nil {
		t.Fatalf("Fetch with failing DOI enrichment: %v", err)
	}

	if v, _ := entry.Get("journal"); v != "Quantum 5, 438 (2021)" {
		t.Errorf("journal = %q, want the arXiv journal ref", v)
	}
	if v, _ := entry.Get("doi"); v != "10.22331/q-2021-04-26-438" {
		t.Errorf("doi = %q", v)
	}
}

func TestArxivFetchOldStyleDropsPrimaryClass(t *testing.T) {
	feed := atomHeader + `
  <entry>
    <id>http://arxiv.org/abs/quant-ph/0410100v1</id>
    <published>2004-10-13T12:00:00Z</published>
    <title>An Older Preprint</title>
    <author><name>Jane Doe</name></author>
    <arxiv:primary_category term="quant-ph"/>
  </entry>
</feed>`
	srv := arxivServer(t, feed)
	defer srv.Close()

	cfg := testConfig()
	cfg.ArxivBaseURL = srv.URL

	entry, err := NewArxivClient(cfg, nil).Fetch(context.Background(), arxivID("quant-ph/0410100v1"))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if entry.Has("primaryclass") {
		t.Error("old-style ID must not carry primaryclass")
	}
	if v, _ := entry.Get("eprint"); v != "quant-ph/0410100" {
		t.Errorf("eprint = %q", v)
	}
}

func TestArxivFetchRejectsInvalidID(t *testing.T) {
	cfg := testConfig()
	cfg.ArxivBaseURL = "http://127.0.0.1:0" // must never be contacted

	_, err := NewArxivClient(cfg, nil).Fetch(context.Background(), arxivID("not-an-id"))
	if !errors.Is(err, ErrParse) {
		t.Errorf("err = %v, want parse error", err)
	}
}
