package query

type KeyValuePair struct {
	Key float64
	// Sequence breaks ties between equal keys, lower is better
	Sequence uint64
	Value    DocScore
}

type Heap struct {
	items    []*KeyValuePair
	lessFunc func(a, b *KeyValuePair) bool
}

// NewMinHeap puts the worst item first: the lowest key and, for equal keys,
// the highest sequence.
func NewMinHeap() *Heap {
	h := &Heap{
		lessFunc: func(a, b *KeyValuePair) bool {
			if a.Key != b.Key {
				return a.Key < b.Key
			}
			return a.Sequence > b.Sequence
		},
	}

	return h
}

func (h *Heap) Len() int { return len(h.items) }

func (h Heap) Less(i, j int) bool {
	return h.lessFunc(h.items[i], h.items[j])
}

func (h Heap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *Heap) Push(item any) {
	h.items = append(h.items, item.(*KeyValuePair))
}

func (h *Heap) Pop() any {
	old := h.items
	n := len(old)
	x := old[n-1]
	h.items = old[0 : n-1]
	return x
}
