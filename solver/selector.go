package solver

// selectionThresholdBytes is the default algorithm-bias tie-break margin:
// a many-objects winner is kept over a smaller single-object upper bound
// unless the single-object pass wins by more than this many bytes.
const selectionThresholdBytes int64 = 100 * 1024 * 1024

// Selector picks the best of the portfolio's results deterministically.
type Selector struct {
	// ThresholdBytes overrides selectionThresholdBytes when non-zero.
	ThresholdBytes int64
}

// SelectorOutcome reports the winner plus the bookkeeping spec.md §4.5
// asks for.
type SelectorOutcome struct {
	Best      *Result
	BestIndex int
	WorstSize int64
}

// Select iterates results in submission order (algo outermost, sort
// middle, fit innermost, per the caller's enumeration) and returns the
// winner. A Result with Failed set is treated as having an infinite
// upper bound and never wins.
func (s Selector) Select(results []*Result) SelectorOutcome {
	threshold := s.ThresholdBytes
	if threshold == 0 {
		threshold = selectionThresholdBytes
	}

	var out SelectorOutcome
	out.BestIndex = -1
	var worst int64

	for i, r := range results {
		if r == nil || r.Failed {
			continue
		}
		if out.Best == nil {
			out.Best = r
			out.BestIndex = i
			worst = r.UpperBound
			continue
		}
		if r.UpperBound > worst {
			worst = r.UpperBound
		}
		if r.UpperBound >= out.Best.UpperBound {
			continue // not an improvement; stable, keep earlier winner
		}
		if out.Best.Algorithm.IsManyObjects() && !r.Algorithm.IsManyObjects() {
			gain := out.Best.UpperBound - r.UpperBound
			if gain <= threshold {
				continue // retain many-objects bias
			}
		}
		out.Best = r
		out.BestIndex = i
	}
	out.WorstSize = worst
	return out
}
