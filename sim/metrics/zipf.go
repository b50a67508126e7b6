package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ZipfSlope ranks symbols by descending frequency and least-squares fits
// log(frequency) against log(rank), reporting the slope. A corpus obeying
// Zipf's law yields a slope near -1; uniform frequencies yield 0.
//
// Returns 0 when fewer than two distinct non-zero frequencies exist, since
// the fit is degenerate there.
func ZipfSlope(corpus [][]int) float64 {
	freq := make(map[int]int)
	for _, seq := range corpus {
		for _, sym := range seq {
			freq[sym]++
		}
	}

	counts := make([]float64, 0, len(freq))
	distinct := make(map[int]struct{}, len(freq))
	for _, c := range freq {
		counts = append(counts, float64(c))
		distinct[c] = struct{}{}
	}
	if len(distinct) < 2 {
		return 0
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(counts)))

	logRank := make([]float64, len(counts))
	logFreq := make([]float64, len(counts))
	for i, c := range counts {
		logRank[i] = math.Log(float64(i + 1))
		logFreq[i] = math.Log(c)
	}
	_, slope := stat.LinearRegression(logRank, logFreq, nil, false)
	return slope
}
