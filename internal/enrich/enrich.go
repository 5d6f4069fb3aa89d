// Package enrich attaches external reference links to solutions. It is
// strictly best-effort: a dead search collaborator degrades to a
// deterministic search-URL fallback and never disturbs the pipeline.
package enrich

import (
	"context"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"

	"rca-agent/internal/schema"
)

// Result is one reference found by a search collaborator.
type Result struct {
	Title string
	URL   string
}

// Searcher is the external search collaborator.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

const defaultWorkers = 4

// Enricher runs per-solution lookups with a bounded worker pool. The
// concurrency is a latency optimization only; solutions are independent.
type Enricher struct {
	searcher Searcher
	maxLinks int
	workers  int
	logger   *logrus.Logger
}

func New(searcher Searcher, maxLinks int, logger *logrus.Logger) *Enricher {
	if maxLinks <= 0 {
		maxLinks = 3
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Enricher{
		searcher: searcher,
		maxLinks: maxLinks,
		workers:  defaultWorkers,
		logger:   logger,
	}
}

// Enrich fills References on every solution in resp. After it returns,
// each solution carries at least one link.
func (e *Enricher) Enrich(ctx context.Context, resp *schema.LogAnalysisResponse) {
	if e == nil || e.searcher == nil || len(resp.PossibleSolutions) == 0 {
		return
	}

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i := range resp.PossibleSolutions {
		wg.Add(1)
		sem <- struct{}{}
		go func(sol *schema.PossibleSolution) {
			defer wg.Done()
			defer func() { <-sem }()
			e.enrichOne(ctx, sol)
		}(&resp.PossibleSolutions[i])
	}
	wg.Wait()
}

func (e *Enricher) enrichOne(ctx context.Context, sol *schema.PossibleSolution) {
	term := sol.SearchKeywords
	if term == "" {
		term = sol.ErrorMessage
	}

	defer func() {
		// A panicking searcher must not take the pipeline down.
		if r := recover(); r != nil {
			e.logger.WithField("panic", r).Warn("search collaborator panicked")
		}
		if len(sol.References) == 0 {
			sol.References = []string{FallbackURL(term)}
		}
	}()

	results, err := e.searcher.Search(ctx, term, e.maxLinks)
	if err != nil {
		e.logger.WithError(err).WithField("query", term).Debug("reference search failed")
		return
	}
	links := make([]string, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		links = append(links, r.URL)
		if len(links) == e.maxLinks {
			break
		}
	}
	sol.References = links
}

// FallbackURL builds the deterministic search-engine link used when the
// collaborator fails or returns nothing.
func FallbackURL(term string) string {
	return "https://duckduckgo.com/?q=" + url.QueryEscape(term)
}
