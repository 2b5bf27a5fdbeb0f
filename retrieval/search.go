package retrieval

import (
	"github.com/hupe1980/patternmon/vsa"
)

// SearchConfig tunes TwoStageSearch.
type SearchConfig struct {
	// CandidateMultiplier scales k to the stage 1 shortlist size.
	CandidateMultiplier int
	// MinCandidates is the lower bound of the stage 1 shortlist.
	MinCandidates int
}

// DefaultSearchConfig returns the default tuning.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		CandidateMultiplier: 4,
		MinCandidates:       16,
	}
}

func (c SearchConfig) shortlist(k int) int {
	mult := c.CandidateMultiplier
	if mult <= 0 {
		mult = 1
	}
	return max(k*mult, c.MinCandidates, k)
}

// Result is a ranked search hit.
type Result struct {
	// ID is the id the vector was indexed under.
	ID int
	// Score is the exact cosine similarity with the query.
	Score float64
	// Overlap is the stage 1 ternary dot product.
	Overlap int
}

// TwoStageSearch returns up to k ids from idx ranked by similarity to query.
//
// Stage 1 scores every id sharing a non-zero dimension with the query via the
// posting lists and keeps a shortlist of the best positive overlaps. Stage 2
// re-scores the shortlist with the exact cosine similarity against vectors,
// which must hold the vector of every indexed id. Results are ordered by score
// descending, then id ascending.
func TwoStageSearch(query *vsa.SparseVec, idx *TernaryInvertedIndex, vectors map[int]*vsa.SparseVec, cfg SearchConfig, k int) ([]Result, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if !idx.Finalized() {
		return nil, ErrNotFinalized
	}
	if query.Dimension() != idx.Dimension() {
		return nil, &ErrDimensionMismatch{Expected: idx.Dimension(), Actual: query.Dimension()}
	}

	// Stage 1: coarse shortlist from the postings.
	coarse := idx.coarseScores(query)
	shortlist := newTopHeap(cfg.shortlist(k))
	for id, s := range coarse {
		if s > 0 {
			shortlist.Offer(candidate{id: id, score: float64(s)})
		}
	}

	// Stage 2: exact re-rank.
	top := newTopHeap(k)
	for _, c := range shortlist.Sorted() {
		v, ok := vectors[int(c.id)]
		if !ok {
			continue
		}
		sim, err := vsa.Cosine(query, v)
		if err != nil {
			return nil, err
		}
		top.Offer(candidate{id: c.id, score: sim})
	}

	ranked := top.Sorted()
	results := make([]Result, len(ranked))
	for i, c := range ranked {
		results[i] = Result{
			ID:      int(c.id),
			Score:   c.score,
			Overlap: int(coarse[c.id]),
		}
	}
	return results, nil
}
