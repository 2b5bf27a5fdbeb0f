package retrieval

// candidate is a scored id kept during search.
type candidate struct {
	id    uint32
	score float64
}

// worse reports whether a ranks below b. Ties rank the larger id lower so
// results are deterministic.
func worse(a, b candidate) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.id > b.id
}

const heapArity = 4

// topHeap keeps the best n candidates. It is a 4-ary heap ordered worst
// first, so the root is the eviction candidate.
type topHeap struct {
	items []candidate
	limit int
}

func newTopHeap(limit int) *topHeap {
	return &topHeap{items: make([]candidate, 0, limit), limit: limit}
}

func (h *topHeap) Len() int { return len(h.items) }

// Offer inserts c if the heap has room or c beats the current worst.
func (h *topHeap) Offer(c candidate) {
	if len(h.items) < h.limit {
		h.items = append(h.items, c)
		h.up(len(h.items) - 1)
		return
	}
	if h.limit == 0 || !worse(h.items[0], c) {
		return
	}
	h.items[0] = c
	h.down(0, len(h.items))
}

// Sorted drains the heap and returns the candidates best first.
func (h *topHeap) Sorted() []candidate {
	n := len(h.items)
	out := make([]candidate, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = h.items[0]
		last := len(h.items) - 1
		h.items[0] = h.items[last]
		h.items = h.items[:last]
		if last > 0 {
			h.down(0, last)
		}
	}
	return out
}

func (h *topHeap) up(j int) {
	item := h.items[j]
	for j > 0 {
		i := (j - 1) / heapArity
		if !worse(item, h.items[i]) {
			break
		}
		h.items[j] = h.items[i]
		j = i
	}
	h.items[j] = item
}

func (h *topHeap) down(i0, n int) {
	i := i0
	item := h.items[i]
	for {
		firstChild := heapArity*i + 1
		if firstChild >= n {
			break
		}
		best := firstChild
		lastChild := min(firstChild+heapArity, n)
		for c := firstChild + 1; c < lastChild; c++ {
			if worse(h.items[c], h.items[best]) {
				best = c
			}
		}
		if !worse(h.items[best], item) {
			break
		}
		h.items[i] = h.items[best]
		i = best
	}
	h.items[i] = item
}
