package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
)

// DefaultLimit caps the number of hits returned by Search.
const DefaultLimit = 50

// Index is a memory-only Bleve index over feed items.
//
// Thread safety: all methods are safe for concurrent use. Reset swaps the
// underlying index under the write lock.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

// Hit is one search result.
type Hit struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// NewIndex creates an empty in-memory index.
func NewIndex(logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{index: idx, logger: logger}, nil
}

// Close releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Add indexes items in one batch. Re-adding an id replaces it.
func (s *Index) Add(items []domain.ContentItem) error {
	if len(items) == 0 {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, item := range items {
		if err := batch.Index(item.ID, DocumentFrom(item).ToMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", item.ID, err)
		}
	}
	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Reset drops every document and indexes items.
func (s *Index) Reset(items []domain.ContentItem) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("closing replaced search index", "error", err)
	}
	return s.Add(items)
}

// Count returns the number of indexed documents.
func (s *Index) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Search returns items whose title or tags match text, best first.
// An empty text returns no hits.
func (s *Index) Search(ctx context.Context, text string, limit int) ([]Hit, error) {
	folded := Fold(text)
	if folded == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(folded), limit, 0, false)
	req.Fields = []string{"kind", "title_raw"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if k, ok := h.Fields["kind"].(string); ok {
			hit.Kind = k
		}
		if t, ok := h.Fields["title_raw"].(string); ok {
			hit.Title = t
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// buildQuery matches the folded text against the title (exact, fuzzy and
// prefix on the last word for type-ahead) and against tags.
func buildQuery(folded string) query.Query {
	match := bleve.NewMatchQuery(folded)
	match.SetField("title")
	match.SetBoost(3.0)

	queries := []query.Query{match}

	words := strings.Fields(folded)
	last := words[len(words)-1]

	fuzzy := bleve.NewFuzzyQuery(last)
	fuzzy.SetField("title")
	fuzzy.SetFuzziness(1)
	fuzzy.SetBoost(0.8)
	queries = append(queries, fuzzy)

	if len(last) >= 2 {
		prefix := bleve.NewPrefixQuery(last)
		prefix.SetField("title")
		prefix.SetBoost(0.5)
		queries = append(queries, prefix)
	}

	tag := bleve.NewTermQuery(folded)
	tag.SetField("tags")
	tag.SetBoost(2.0)
	queries = append(queries, tag)

	return bleve.NewDisjunctionQuery(queries...)
}
