package metrics

import "math"

type symbolPair struct {
	last, first int
}

// BoundaryMutualInformation measures coupling across sequence boundaries:
// the discrete mutual information, in bits, between the last symbol of
// sequence k and the first symbol of sequence k+1, over all adjacent pairs.
// An independent automaton draw carries no information across boundaries,
// so synthetic corpora should score near zero; a real corpus with
// discourse-level structure may not.
//
// Adjacent pairs with an empty member contribute no observation. Zero
// probability cells contribute 0 to the sum. Returns 0 with fewer than one
// usable pair.
func BoundaryMutualInformation(corpus [][]int) float64 {
	joint := make(map[symbolPair]float64)
	lastMarg := make(map[int]float64)
	firstMarg := make(map[int]float64)
	pairs := 0.0

	for k := 0; k+1 < len(corpus); k++ {
		prev, next := corpus[k], corpus[k+1]
		if len(prev) == 0 || len(next) == 0 {
			continue
		}
		last := prev[len(prev)-1]
		first := next[0]
		joint[symbolPair{last, first}]++
		lastMarg[last]++
		firstMarg[first]++
		pairs++
	}
	if pairs == 0 {
		return 0
	}

	mi := 0.0
	for p, c := range joint {
		pab := c / pairs
		pa := lastMarg[p.last] / pairs
		pb := firstMarg[p.first] / pairs
		mi += pab * math.Log2(pab/(pa*pb))
	}
	return mi
}
