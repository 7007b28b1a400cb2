package bulk

import "iter"

// Batch is the half-open window [Start, End) over the row source.
type Batch struct {
	Index int
	Start int
	End   int
}

func (b Batch) Len() int {
	return b.End - b.Start
}

// BatchCount returns ceil(n / batchSize).
func BatchCount(n, batchSize int) int {
	if n <= 0 || batchSize <= 0 {
		return 0
	}
	return (n + batchSize - 1) / batchSize
}

// Plan lazily slices [n] rows into batches of [batchSize] in their original order, only the last batch may be shorter.
// A non-positive [batchSize] yields nothing.
func Plan(n, batchSize int) iter.Seq[Batch] {
	return func(yield func(Batch) bool) {
		if batchSize <= 0 {
			return
		}

		for index, start := 0, 0; start < n; index, start = index+1, start+batchSize {
			if !yield(Batch{Index: index, Start: start, End: min(start+batchSize, n)}) {
				return
			}
		}
	}
}
