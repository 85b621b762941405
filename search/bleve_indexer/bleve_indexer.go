package bleve_indexer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/noelzubin/smart_search/search"
	"github.com/samber/lo"
	"go.uber.org/zap"

	_ "github.com/blevesearch/bleve/v2/config"
	bleveSearch "github.com/blevesearch/bleve/v2/search"
)

// MaxHits is the number of semantic results returned per query.
const MaxHits = 20

// bleveIndexer is the implementation of the search.SemanticSearcher
// interface which keeps the workspace in an in-memory bleve index.
type bleveIndexer struct {
	mu     sync.RWMutex
	index  bleve.Index
	items  map[string]search.MatchResult // document id -> result template
	logger *zap.Logger
}

// NewBleveIndexer returns an empty semantic index.
func NewBleveIndexer(logger *zap.Logger) (*bleveIndexer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	index, err := newIndex()
	if err != nil {
		return nil, err
	}

	return &bleveIndexer{index: index, items: map[string]search.MatchResult{}, logger: logger}, nil
}

func newIndex() (bleve.Index, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return index, nil
}

// IndexSources replaces the indexed content with the items of sources.
func (s *bleveIndexer) IndexSources(sources search.Sources) error {
	index, err := newIndex()
	if err != nil {
		return err
	}

	items := search.Items(sources)
	batch := index.NewBatch()
	byID := make(map[string]search.MatchResult, len(items))
	for i, item := range items {
		id := documentID(i, item)
		byID[id] = item
		if err := batch.Index(id, map[string]interface{}{
			"kind": item.Category.String(),
			"text": item.Text,
		}); err != nil {
			index.Close()
			return fmt.Errorf("failed to index %s: %w", id, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return fmt.Errorf("failed to index sources: %w", err)
	}

	s.mu.Lock()
	old := s.index
	s.index, s.items = index, byID
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	s.logger.Debug("Indexed sources", zap.Int("items", len(items)))
	return nil
}

// documentID is unique per item and keeps the search order recoverable.
func documentID(i int, item search.MatchResult) string {
	return item.Category.String() + "-" + strconv.Itoa(i)
}

// Search runs a fuzzy full-text query over the indexed items.
func (s *bleveIndexer) Search(ctx context.Context, qry string) ([]search.MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := strings.TrimSpace(qry)
	if query == "" {
		return []search.MatchResult{}, nil
	}

	match := bleve.NewMatchQuery(query)
	match.SetField("text")
	match.SetFuzziness(1)
	prefix := bleve.NewPrefixQuery(strings.ToLower(query))
	prefix.SetField("text")

	searchRequest := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(match, prefix))
	searchRequest.Size = MaxHits

	s.mu.RLock()
	defer s.mu.RUnlock()

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("semantic search failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hits := lo.Filter(searchResult.Hits, func(hit *bleveSearch.DocumentMatch, _ int) bool {
		_, ok := s.items[hit.ID]
		return ok
	})

	return lo.Map(hits, func(hit *bleveSearch.DocumentMatch, _ int) search.MatchResult {
		result := s.items[hit.ID]
		result.Type = search.SemanticType(result.Type)
		result.Semantic = true
		result.MatchIndices = search.MatchIndices(result.Text, query)
		return result
	}), nil
}

// Close releases the index.
func (s *bleveIndexer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}
