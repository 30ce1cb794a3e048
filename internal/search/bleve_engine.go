package search

import (
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/hkrnws/internal/hn"
)

type bleveEngine struct {
	mu      sync.RWMutex
	idx     bleve.Index
	indexed map[string]*hn.Story
}

// NewBleveEngine creates an in-memory Bleve index. The index holds only
// the current story set and is rebuilt on every refresh, so nothing is
// persisted between runs.
func NewBleveEngine() (Searcher, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &bleveEngine{idx: idx, indexed: map[string]*hn.Story{}}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	// Story doc mapping with boosted fields
	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	by := bleve.NewTextFieldMapping()
	by.Analyzer = standard.Name
	by.Store = true
	by.IncludeTermVectors = false

	domain := bleve.NewTextFieldMapping()
	domain.Analyzer = standard.Name
	domain.Store = true

	url := bleve.NewTextFieldMapping()
	url.Analyzer = standard.Name
	url.Store = false

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("by", by)
	dm.AddFieldMappingsAt("domain", domain)
	dm.AddFieldMappingsAt("url", url)

	im.DefaultMapping = dm
	return im
}

// OnStoriesUpdated replaces the indexed story set with the given one.
func (b *bleveEngine) OnStoriesUpdated(stories []*hn.Story) {
	b.mu.Lock()
	defer b.mu.Unlock()

	batch := b.idx.NewBatch()
	for docID := range b.indexed {
		batch.Delete(docID)
	}

	indexed := make(map[string]*hn.Story, len(stories))
	for _, s := range stories {
		docID := docIDForStory(s.ID)
		_ = batch.Index(docID, map[string]any{
			"title":  s.Title,
			"by":     s.By,
			"domain": s.Domain(),
			"url":    s.URL,
		})
		indexed[docID] = s
	}

	if err := b.idx.Batch(batch); err != nil {
		return
	}
	b.indexed = indexed
}

func (b *bleveEngine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}
	// Tokenize input and build an OR of per-term matches across key fields with boosts
	tokens := tokenize(query)
	var qs []bleveQuery.Query
	for _, tok := range tokens {
		// title^4
		qt := bleve.NewMatchQuery(tok)
		qt.SetField("title")
		qt.SetBoost(4.0)
		qs = append(qs, qt)
		qtp := bleve.NewPrefixQuery(strings.ToLower(tok))
		qtp.SetField("title")
		qtp.SetBoost(3.5)
		qs = append(qs, qtp)
		// by^2
		qb := bleve.NewMatchQuery(tok)
		qb.SetField("by")
		qb.SetBoost(2.0)
		qs = append(qs, qb)
		qbp := bleve.NewPrefixQuery(strings.ToLower(tok))
		qbp.SetField("by")
		qbp.SetBoost(1.8)
		qs = append(qs, qbp)
		// domain^1
		qd := bleve.NewMatchQuery(tok)
		qd.SetField("domain")
		qd.SetBoost(1.0)
		qs = append(qs, qd)
		qdp := bleve.NewPrefixQuery(strings.ToLower(tok))
		qdp.SetField("domain")
		qdp.SetBoost(0.8)
		qs = append(qs, qdp)
		// url^0.5
		qu := bleve.NewMatchQuery(tok)
		qu.SetField("url")
		qu.SetBoost(0.5)
		qs = append(qs, qu)
		qup := bleve.NewPrefixQuery(strings.ToLower(tok))
		qup.SetField("url")
		qup.SetBoost(0.3)
		qs = append(qs, qup)
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}
	q := bleve.NewDisjunctionQuery(qs...)
	srch := bleve.NewSearchRequestOptions(q, limit, 0, false)
	res, err := b.idx.Search(srch)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		story, ok := b.indexed[h.ID]
		if !ok {
			continue
		}
		out = append(out, &Result{Story: story, Score: h.Score})
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (b *bleveEngine) DocCount() (int, error) {
	q := bleve.NewMatchAllQuery()
	req := bleve.NewSearchRequestOptions(q, 0, 0, false)
	res, err := b.idx.Search(req)
	if err != nil {
		return 0, err
	}
	return int(res.Total), nil
}

func docIDForStory(id int) string { return "story:" + strconv.Itoa(id) }
