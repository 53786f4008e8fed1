package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Searcher runs one web search and returns formatted findings.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) (string, error)
}

// QueryVariants expands a topic into the fixed set of search queries issued
// for every research run.
func QueryVariants(topic string) []string {
	return []string{
		topic,
		topic + " facts evidence 2024",
		topic + " expert analysis",
		topic + " recent research findings",
	}
}

// QueryResult is the outcome of a single query variant.
type QueryResult struct {
	Query  string
	Output string
	OK     bool
}

// MultiSearcher fans a topic out across every query variant and reassembles
// the outcomes in variant order.
type MultiSearcher struct {
	Searcher   Searcher
	MaxResults int
	Logger     *slog.Logger
}

func NewMultiSearcher(s Searcher) *MultiSearcher {
	return &MultiSearcher{Searcher: s, MaxResults: 3, Logger: slog.Default()}
}

// SearchTopic runs every variant concurrently. Failures stay isolated: a
// failed variant contributes its error text and never aborts the others.
// Each goroutine writes to its own slot, so the returned slice is in
// variant order no matter how the searches interleave.
func (m *MultiSearcher) SearchTopic(ctx context.Context, topic string) []QueryResult {
	variants := QueryVariants(topic)
	results := make([]QueryResult, len(variants))

	// Resolve the receiver before spawning anything: a bad receiver must
	// panic on the calling goroutine, and the recover handlers below must
	// never dereference m.
	searcher := m.Searcher
	limit := m.maxResults()
	logger := m.logger()

	var wg sync.WaitGroup
	for i, q := range variants {
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Search variant panicked", "query", query, "panic", r)
					results[i] = QueryResult{
						Query:  query,
						Output: fmt.Sprintf("**Search %d** for '%s' failed: %v", i+1, query, r),
					}
				}
			}()

			output, err := searcher.Search(ctx, query, limit)
			if err != nil {
				logger.Error("Search variant failed", "query", query, "error", err)
				results[i] = QueryResult{Query: query, Output: err.Error()}
				return
			}
			results[i] = QueryResult{Query: query, Output: output, OK: true}
		}(i, q)
	}
	wg.Wait()

	return results
}

// Combine folds per-variant outcomes into one findings document, labelling
// each section with its variant, and reports how many variants succeeded.
func Combine(results []QueryResult) (string, int) {
	sections := make([]string, 0, len(results))
	successful := 0
	for i, r := range results {
		sections = append(sections, fmt.Sprintf("### Search Query %d: '%s'\n%s\n", i+1, r.Query, r.Output))
		if r.OK {
			successful++
		}
	}
	return strings.Join(sections, "\n"), successful
}

func (m *MultiSearcher) maxResults() int {
	if m.MaxResults <= 0 {
		return 3
	}
	return m.MaxResults
}

func (m *MultiSearcher) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}
