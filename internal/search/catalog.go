/*
Package search provides case-insensitive substring search over the user catalog.

Ids are indexed in an in-memory bleve index as single lower-cased tokens and
queried with a *q* wildcard. Results keep catalog order so the user list does
not reshuffle as the query grows.
*/
package search

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/khanglvm/reco-hub/internal/logging"
)

const (
	idField    = "id"
	idAnalyzer = "id_lower"
)

// CatalogIndex indexes user ids for substring search.
type CatalogIndex struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex

	// ids in catalog order, de-duplicated
	ids      []string
	position map[string]int
}

// NewCatalogIndex builds an in-memory index over ids.
func NewCatalogIndex(ids []string) (*CatalogIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	c := &CatalogIndex{
		bleveIndex: index,
		position:   make(map[string]int, len(ids)),
	}

	batch := index.NewBatch()
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := c.position[id]; dup {
			continue
		}
		c.position[id] = len(c.ids)
		c.ids = append(c.ids, id)

		if err := batch.Index(id, map[string]interface{}{idField: id}); err != nil {
			logging.Warn().Err(err).Str("user", id).Msg("failed to index user id")
		}
	}

	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to batch index catalog: %w", err)
	}

	return c, nil
}

// buildIndexMapping indexes the id field as one lower-cased token.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	if err := indexMapping.AddCustomAnalyzer(idAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		// static definition; only fails if the registry names change
		panic(err)
	}

	idMapping := bleve.NewTextFieldMapping()
	idMapping.Analyzer = idAnalyzer
	idMapping.Store = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt(idField, idMapping)

	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = idAnalyzer
	return indexMapping
}

// Search returns ids containing q case-insensitively, in catalog order.
// An empty query returns the whole catalog. limit <= 0 means no limit.
func (c *CatalogIndex) Search(q string, limit int) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(q))
	// drop wildcard metacharacters from user input
	term = strings.NewReplacer("*", "", "?", "").Replace(term)

	if term == "" {
		return capped(append([]string(nil), c.ids...), limit), nil
	}

	wq := bleve.NewWildcardQuery("*" + term + "*")
	wq.SetField(idField)

	req := bleve.NewSearchRequestOptions(wq, len(c.ids), 0, false)
	results, err := c.bleveIndex.Search(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}

	matches := make([]string, 0, len(results.Hits))
	for _, hit := range results.Hits {
		if _, ok := c.position[hit.ID]; ok {
			matches = append(matches, hit.ID)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return c.position[matches[i]] < c.position[matches[j]]
	})

	return capped(matches, limit), nil
}

// IDs returns the indexed catalog in order.
func (c *CatalogIndex) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.ids...)
}

// Count returns the number of indexed ids.
func (c *CatalogIndex) Count() (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	docCount, err := c.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}
	return docCount, nil
}

// Close releases the index.
func (c *CatalogIndex) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bleveIndex != nil {
		return c.bleveIndex.Close()
	}
	return nil
}

func capped(ids []string, limit int) []string {
	if limit > 0 && len(ids) > limit {
		return ids[:limit]
	}
	return ids
}
