// Package fakesearch is an in-memory stand-in for the hosted search service.
// It speaks the same wire contract and is used by tests and by the CLI's
// local mode. Writes become searchable after a configurable indexing lag so
// that eventual consistency can be exercised.
package fakesearch

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	errInvalidCursor = errors.New("invalid cursor")
	errInvalidLimit  = errors.New("limit must be positive")
)

// Document is a stored document as it travels on the wire.
type Document struct {
	ID       string         `json:"id"`
	Content  any            `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Scored is a search hit.
type Scored struct {
	Document
	Score float64 `json:"score"`
}

type entry struct {
	doc       Document
	text      string // lowercased searchable text
	size      int
	visibleAt time.Time
}

type index struct {
	docs map[string]*entry
}

// Store holds every index of one fake database. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	indexes map[string]*index
	lag     time.Duration
	now     func() time.Time
}

// NewStore creates an empty store. Writes become searchable after lag.
func NewStore(lag time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{indexes: make(map[string]*index), lag: lag, now: now}
}

// Upsert inserts or replaces documents, creating the index on first write.
func (s *Store) Upsert(name string, docs []Document) error {
	entries := make([]*entry, len(docs))
	for i, d := range docs {
		raw, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
		content, _ := json.Marshal(d.Content)
		entries[i] = &entry{doc: d, text: strings.ToLower(string(content)), size: len(raw)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.indexes[name]
	if !ok {
		idx = &index{docs: make(map[string]*entry)}
		s.indexes[name] = idx
	}
	visibleAt := s.now().Add(s.lag)
	for _, e := range entries {
		e.visibleAt = visibleAt
		idx.docs[e.doc.ID] = e
	}
	return nil
}

// Search ranks visible documents by the share of query terms they contain.
func (s *Store) Search(name, query string, topK int, filter string) ([]Scored, error) {
	match, err := parseFilter(filter)
	if err != nil {
		return nil, err
	}
	terms := strings.Fields(strings.ToLower(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexes[name]
	if !ok || len(terms) == 0 || topK <= 0 {
		return []Scored{}, nil
	}

	now := s.now()
	var hits []Scored
	for _, e := range idx.docs {
		if e.visibleAt.After(now) || !match(e.doc) {
			continue
		}
		found := 0
		for _, t := range terms {
			if strings.Contains(e.text, t) {
				found++
			}
		}
		if found == 0 {
			continue
		}
		hits = append(hits, Scored{Document: e.doc, Score: float64(found) / float64(len(terms))})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	if hits == nil {
		hits = []Scored{}
	}
	return hits, nil
}

// FetchIDs returns documents positionally aligned with ids, nil where absent.
func (s *Store) FetchIDs(name string, ids []string) []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Document, len(ids))
	idx, ok := s.indexes[name]
	if !ok {
		return out
	}
	for i, id := range ids {
		if e, ok := idx.docs[id]; ok {
			d := e.doc
			out[i] = &d
		}
	}
	return out
}

// FetchPrefix returns every document whose id starts with prefix, ordered by id.
func (s *Store) FetchPrefix(name, prefix string) []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexes[name]
	if !ok {
		return []Document{}
	}
	out := []Document{}
	for _, id := range idx.sortedIDs(prefix) {
		out = append(out, idx.docs[id].doc)
	}
	return out
}

// Range returns up to limit documents after cursor, ordered by id.
// The cursor is an opaque offset; "" starts from the beginning and an empty
// next cursor marks the end.
func (s *Store) Range(name, cursor string, limit int, prefix string) (string, []Document, error) {
	if limit <= 0 {
		return "", nil, errInvalidLimit
	}
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return "", nil, errInvalidCursor
		}
		offset = n
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexes[name]
	if !ok {
		return "", []Document{}, nil
	}
	ids := idx.sortedIDs(prefix)
	if offset >= len(ids) {
		return "", []Document{}, nil
	}
	end := min(offset+limit, len(ids))
	docs := make([]Document, 0, end-offset)
	for _, id := range ids[offset:end] {
		docs = append(docs, idx.docs[id].doc)
	}
	next := ""
	if end < len(ids) {
		next = strconv.Itoa(end)
	}
	return next, docs, nil
}

// DeleteSelector picks the documents removed by Delete.
type DeleteSelector struct {
	IDs    []string
	Prefix *string
	Filter *string
}

// Delete removes the selected documents and returns how many existed.
func (s *Store) Delete(name string, sel DeleteSelector) (int, error) {
	var match func(Document) bool
	if sel.Filter != nil {
		m, err := parseFilter(*sel.Filter)
		if err != nil {
			return 0, err
		}
		match = m
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.indexes[name]
	if !ok {
		return 0, nil
	}
	deleted := 0
	remove := func(id string) {
		if _, ok := idx.docs[id]; ok {
			delete(idx.docs, id)
			deleted++
		}
	}
	for _, id := range sel.IDs {
		remove(id)
	}
	if sel.Prefix != nil {
		for _, id := range idx.sortedIDs(*sel.Prefix) {
			remove(id)
		}
	}
	if match != nil {
		for id, e := range idx.docs {
			if match(e.doc) {
				remove(id)
			}
		}
	}
	return deleted, nil
}

// Reset removes every document of an index but keeps the index.
func (s *Store) Reset(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.indexes[name]; ok {
		clear(idx.docs)
	}
}

// DeleteIndex drops an index. Deleting an unknown index is not an error.
func (s *Store) DeleteIndex(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indexes, name)
}

// ListIndexes returns index names in lexical order.
func (s *Store) ListIndexes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.indexes))
}

// IndexStats are the counters of one index.
type IndexStats struct {
	VectorCount        int `json:"vectorCount"`
	PendingVectorCount int `json:"pendingVectorCount"`
}

// DatabaseStats are the counters of the whole database.
type DatabaseStats struct {
	VectorCount        int                   `json:"vectorCount"`
	PendingVectorCount int                   `json:"pendingVectorCount"`
	IndexSize          int64                 `json:"indexSize"`
	Namespaces         map[string]IndexStats `json:"namespaces"`
}

// Info computes database counters at the current time.
func (s *Store) Info() DatabaseStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := DatabaseStats{Namespaces: make(map[string]IndexStats, len(s.indexes))}
	for name, idx := range s.indexes {
		var st IndexStats
		for _, e := range idx.docs {
			if e.visibleAt.After(now) {
				st.PendingVectorCount++
			} else {
				st.VectorCount++
			}
			out.IndexSize += int64(e.size)
		}
		out.VectorCount += st.VectorCount
		out.PendingVectorCount += st.PendingVectorCount
		out.Namespaces[name] = st
	}
	return out
}

func (idx *index) sortedIDs(prefix string) []string {
	ids := make([]string, 0, len(idx.docs))
	for id := range idx.docs {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
