package metrics

import "gonum.org/v1/gonum/floats"

// ObservedTransitions counts immediate i→j transitions within each sequence
// of the corpus. symbols sizes the matrix; pass 0 to infer the alphabet from
// the largest symbol present. Callers wanting state-granularity depletion map
// their corpus through the partition first and pass the state count here.
func ObservedTransitions(corpus [][]int, symbols int) [][]float64 {
	n := symbols
	if n == 0 {
		for _, seq := range corpus {
			for _, sym := range seq {
				if sym+1 > n {
					n = sym + 1
				}
			}
		}
	}
	counts := make([][]float64, n)
	for i := range counts {
		counts[i] = make([]float64, n)
	}
	for _, seq := range corpus {
		for t := 0; t+1 < len(seq); t++ {
			counts[seq[t]][seq[t+1]]++
		}
	}
	return counts
}

// DepletionResult tallies cells of an observed transition matrix against an
// independence model (outer product of the row and column marginals over the
// grand total).
type DepletionResult struct {
	// Supported is the number of cells whose expected count met the
	// minimum-support threshold and so entered the tally.
	Supported int
	// Excluded counts the cells skipped for insufficient support. This is
	// not an error; the exclusion itself is part of the report.
	Excluded int
	// Depleted is the number of supported cells with observed/expected
	// below the depletion ratio.
	Depleted int
	// Asymmetry is the fraction of depleted cells whose mirror cell (j,i)
	// is supported but not depleted.
	Asymmetry float64
}

// DepletedFraction returns Depleted/Supported, or 0 with no supported cells.
func (r DepletionResult) DepletedFraction() float64 {
	if r.Supported == 0 {
		return 0
	}
	return float64(r.Depleted) / float64(r.Supported)
}

// Depletion flags transition cells that occur far less often than the
// independence model predicts. A cell enters the tally only when its
// expected count is at least minSupport; a supported cell is depleted when
// observed/expected < ratio. The asymmetry score measures directionality:
// of the depleted cells, how many have a mirror cell that is supported yet
// not depleted.
func Depletion(counts [][]float64, minSupport, ratio float64) DepletionResult {
	n := len(counts)
	var res DepletionResult
	if n == 0 {
		return res
	}

	rowSum := make([]float64, n)
	colSum := make([]float64, n)
	total := 0.0
	for i, row := range counts {
		rowSum[i] = floats.Sum(row)
		total += rowSum[i]
		for j, c := range row {
			colSum[j] += c
		}
	}
	if total == 0 {
		return res
	}

	expected := func(i, j int) float64 {
		return rowSum[i] * colSum[j] / total
	}
	supported := func(i, j int) bool {
		return expected(i, j) >= minSupport
	}
	depleted := func(i, j int) bool {
		return counts[i][j]/expected(i, j) < ratio
	}

	asymmetric := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if !supported(i, j) {
				res.Excluded++
				continue
			}
			res.Supported++
			if !depleted(i, j) {
				continue
			}
			res.Depleted++
			if supported(j, i) && !depleted(j, i) {
				asymmetric++
			}
		}
	}
	if res.Depleted > 0 {
		res.Asymmetry = float64(asymmetric) / float64(res.Depleted)
	}
	return res
}
