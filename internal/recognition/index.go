package recognition

import (
	"sync"

	"github.com/coder/hnsw"

	"github.com/trungnq/frontdesk/internal/customer"
	"github.com/trungnq/frontdesk/internal/vectors"
)

const hnswMaxNeighbors = 16

// Index keeps an approximate nearest neighbor graph over the mean face
// embedding of every customer. It shortlists candidates for the matcher so
// a lookup does not have to score the whole customer base.
type Index struct {
	graph *hnsw.Graph[string]
	known map[string]struct{}
	mu    sync.RWMutex
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{known: make(map[string]struct{})}
}

func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance
	return g
}

// Rebuild replaces the index contents with one node per customer, keyed by
// customer ID and positioned at the mean of the customer's embeddings.
// Customers without embeddings are skipped.
func (idx *Index) Rebuild(records []customer.Record) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	g := newGraph()
	known := make(map[string]struct{}, len(records))

	for i := range records {
		mean, ok := vectors.Mean(records[i].Embeddings)
		if !ok {
			continue
		}
		g.Add(hnsw.MakeNode(records[i].ID, mean))
		known[records[i].ID] = struct{}{}
	}

	idx.graph = g
	idx.known = known
}

// Upsert re-positions a single customer at the mean of its embeddings.
// Adding a node with an existing key replaces it in the graph.
func (idx *Index) Upsert(rec customer.Record) {
	mean, ok := vectors.Mean(rec.Embeddings)
	if !ok {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.graph == nil {
		idx.graph = newGraph()
	}
	idx.graph.Add(hnsw.MakeNode(rec.ID, mean))
	idx.known[rec.ID] = struct{}{}
}

// Shortlist returns the IDs of up to k customers whose mean embedding is
// closest to the probe. An empty index yields an empty shortlist.
func (idx *Index) Shortlist(probe []float32, k int) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.graph == nil || len(idx.known) == 0 {
		return nil
	}

	neighbors := idx.graph.Search(probe, k)
	ids := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		ids = append(ids, n.Key)
	}
	return ids
}

// Count returns the number of indexed customers.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.known)
}
