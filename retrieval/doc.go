// Package retrieval provides approximate nearest-neighbour lookup over
// sparse ternary hypervectors.
//
// TernaryInvertedIndex keeps, for every dimension, Roaring posting lists of
// the ids whose vector holds +1 or -1 there. TwoStageSearch uses the postings
// to shortlist candidates cheaply (stage 1) and re-ranks the shortlist with
// the exact cosine similarity (stage 2).
//
//	idx := retrieval.NewTernaryInvertedIndex(cfg.Dimension)
//	for id, v := range vectors {
//	    _ = idx.Add(uint32(id), v)
//	}
//	idx.Finalize()
//	results, err := retrieval.TwoStageSearch(query, idx, vectors, retrieval.DefaultSearchConfig(), 5)
package retrieval
