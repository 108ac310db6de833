package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pybib/pybib/internal/bibtex"
	"github.com/pybib/pybib/internal/cache"
	"github.com/pybib/pybib/internal/config"
	"github.com/pybib/pybib/internal/fetch"
	"github.com/pybib/pybib/internal/identifier"
)

// resolver turns identifiers into normalized BibTeX entries, consulting the
// lookup cache before the network.
type resolver struct {
	cfg      *config.Config
	registry *fetch.Registry
	store    *cache.Cache // nil when caching is disabled
}

func newResolver(noCache bool) (*resolver, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	r := &resolver{cfg: cfg, registry: fetch.NewRegistry(cfg)}

	if !noCache && !cfg.NoCache && cfg.CacheDir != "" {
		store, err := cache.Open(cfg.CacheDir)
		if err != nil {
			// A broken cache must not block lookups.
			warn("opening cache: %v", err)
		} else {
			r.store = store
		}
	}

	return r, nil
}

func (r *resolver) close() {
	if r.store != nil {
		r.store.Close()
	}
}

// resolveOne produces a normalized entry with no citation key assigned; the
// caller assigns keys so collision suffixes reflect the whole batch.
func (r *resolver) resolveOne(ctx context.Context, id identifier.Identifier) (*bibtex.Entry, error) {
	if r.store != nil {
		if text, ok := r.store.Get(id); ok {
			// Unreadable cached rows fall through to a fresh fetch.
			if records, err := bibtex.ParseRecords(text); err == nil {
				return bibtex.Normalize(records[0]), nil
			}
		}
	}

	entry, err := r.registry.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	bibtex.Normalize(entry)

	if r.store != nil {
		cached := entry.Clone()
		bibtex.NewKeySet().Assign(cached)
		if err := r.store.Put(id, bibtex.Format(cached)); err != nil {
			warn("%v", err)
		}
	}

	return entry, nil
}

// resolveAll resolves a batch in input order, isolating per-identifier
// failures. keys may be pre-seeded with citation keys already taken.
func (r *resolver) resolveAll(ctx context.Context, ids []identifier.Identifier, keys *bibtex.KeySet) ([]*bibtex.Entry, int) {
	entries := make([]*bibtex.Entry, 0, len(ids))
	failed := 0

	for _, id := range ids {
		entry, err := r.resolveOne(ctx, id)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", id.Value, err)
			continue
		}
		keys.Assign(entry)
		entries = append(entries, entry)
	}

	return entries, failed
}

// collectIdentifiers turns command arguments into identifiers of one kind.
// Arguments that are not bare identifiers are run through the extractor, so
// URLs and prose fragments work too. An argument with no identifier is
// reported on stderr and aborts only that argument; the count of such
// arguments is returned so callers can exit non-zero after the batch.
// Duplicates are dropped, order kept.
func collectIdentifiers(kind identifier.Kind, args []string) ([]identifier.Identifier, int) {
	var ids []identifier.Identifier
	bad := 0
	seen := make(map[string]bool)
	add := func(id identifier.Identifier) {
		if !seen[id.Value] {
			seen[id.Value] = true
			ids = append(ids, id)
		}
	}

	for _, arg := range args {
		if id, ok := normalizeArg(kind, arg); ok {
			add(id)
			continue
		}
		found := identifier.ExtractKind(arg, kind)
		if len(found) == 0 {
			bad++
			fmt.Fprintf(os.Stderr, "error: no %s identifier in %q\n", kind, arg)
			continue
		}
		for _, id := range found {
			add(id)
		}
	}

	return ids, bad
}

// normalizeArg tries the argument as a bare identifier of the given kind.
func normalizeArg(kind identifier.Kind, arg string) (identifier.Identifier, bool) {
	switch kind {
	case identifier.KindDOI:
		if doi := identifier.NormalizeDOI(arg); identifier.IsValidDOI(doi) {
			return identifier.Identifier{Kind: kind, Value: doi}, true
		}
	case identifier.KindArXiv:
		if id := identifier.NormalizeArxiv(arg); identifier.IsValidArxiv(id) {
			return identifier.Identifier{Kind: kind, Value: id}, true
		}
	}
	return identifier.Identifier{}, false
}

// warnIncomplete reports entries missing required fields. Incomplete entries
// are still printed; the warning tells the user what to fill in by hand.
func warnIncomplete(entries []*bibtex.Entry) {
	for _, e := range entries {
		if missing := e.MissingFields(); len(missing) > 0 {
			warn("%s: missing fields: %v", e.Key, missing)
		}
	}
}
