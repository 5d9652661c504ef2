package engine

import "fmt"

// Range is an inclusive range of positions in the operation list.
type Range struct {
	From uint64
	To   uint64
}

// SplitRange splits [from, to] into consecutive batches of at most batchSize.
func SplitRange(from, to, batchSize uint64) ([]Range, error) {
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("range end must be >= range start")
	}

	ranges := make([]Range, 0, (to-from)/batchSize+1)
	for start := from; ; {
		end := to
		if to-start >= batchSize {
			end = start + batchSize - 1
		}
		ranges = append(ranges, Range{From: start, To: end})
		if end == to {
			break
		}
		start = end + 1
	}

	return ranges, nil
}
