package sim

import (
	"math/rand"
	"sort"
)

// Corpus is an ordered list of symbol sequences. A corpus is either "real"
// (observed, treated as read-only) or "synthetic" (one Monte Carlo draw,
// discarded after metric extraction).
type Corpus [][]int

// Lengths returns the per-sequence lengths in corpus order.
func (c Corpus) Lengths() []int {
	lengths := make([]int, len(c))
	for i, seq := range c {
		lengths[i] = len(seq)
	}
	return lengths
}

// MapStates rewrites each symbol to its partition state, producing the
// state-granularity view of the corpus. Metric extraction accepts either
// granularity; depletion analysis in particular is meaningful at both.
func (c Corpus) MapStates(partition []int) Corpus {
	mapped := make(Corpus, len(c))
	for i, seq := range c {
		states := make([]int, len(seq))
		for t, sym := range seq {
			states[t] = partition[sym]
		}
		mapped[i] = states
	}
	return mapped
}

// sampler holds precomputed cumulative distributions for one automaton so
// that every draw is a single uniform plus a binary search.
type sampler struct {
	initialCDF []float64
	transCDF   [][]float64
	emitCDF    [][]float64
	zeroTrans  []bool
}

func newSampler(a *Automaton) *sampler {
	s := &sampler{
		initialCDF: cumulative(a.Initial),
		transCDF:   make([][]float64, a.States),
		emitCDF:    make([][]float64, a.States),
		zeroTrans:  make([]bool, a.States),
	}
	for st := 0; st < a.States; st++ {
		s.transCDF[st] = cumulative(a.Transition[st])
		s.emitCDF[st] = cumulative(a.Emission[st])
		s.zeroTrans[st] = s.transCDF[st][a.States-1] == 0
	}
	return s
}

func cumulative(row []float64) []float64 {
	cdf := make([]float64, len(row))
	sum := 0.0
	for i, p := range row {
		sum += p
		cdf[i] = sum
	}
	return cdf
}

// draw maps one uniform variate onto a CDF via binary search. When u lands
// past the last cumulative value (all-zero row, or float round-off at the
// top of the CDF) the index clips to the last entry. Clipping keeps
// generation total and deterministic; callers learn about all-zero rows
// through the warnings returned by Simulate.
func (s *sampler) draw(cdf []float64, u float64) int {
	idx := sort.SearchFloat64s(cdf, u)
	if idx >= len(cdf) {
		idx = len(cdf) - 1
	}
	return idx
}

// Simulate draws one synthetic corpus from the automaton. One sequence is
// generated per entry of lengths, with exactly that many symbols, so the
// synthetic corpus reproduces the length profile of the reference corpus
// verbatim.
//
// Draw order is fixed and part of the contract: per sequence, one uniform
// for the initial state, then for each of the L tokens one uniform for the
// symbol emission followed by one uniform for the state advance. A given
// seed and length list therefore reproduces bit-identical output across
// calls and process restarts. A length of 0 yields an empty sequence but
// still consumes the initial-state draw.
//
// Entering a state whose transition row is all-zero is recovered, not
// fatal: the draw clips to the last state index and a NumericalDegeneracy
// warning is recorded once per run. (Treating such rows as absorbing
// self-loops was the considered alternative; clipping needs no special
// case in the sampling path.)
//
// Time is O(total tokens · log(K+N)); extra space is O(K²+KN) for the CDF
// tables, independent of corpus size.
func Simulate(a *Automaton, lengths []int, rng *rand.Rand) (Corpus, []Warning) {
	if a.States == 0 || a.Symbols == 0 {
		corpus := make(Corpus, len(lengths))
		for i := range corpus {
			corpus[i] = []int{}
		}
		return corpus, []Warning{Degeneracyf("empty automaton: nothing to emit")}
	}
	s := newSampler(a)
	corpus := make(Corpus, 0, len(lengths))
	var warnings []Warning
	clipped := false

	for _, length := range lengths {
		state := s.draw(s.initialCDF, rng.Float64())
		seq := make([]int, 0, length)
		for t := 0; t < length; t++ {
			seq = append(seq, s.draw(s.emitCDF[state], rng.Float64()))
			if s.zeroTrans[state] && !clipped {
				clipped = true
				warnings = append(warnings, Degeneracyf(
					"state %d has an all-zero transition row; draws clip to the last state index", state))
			}
			state = s.draw(s.transCDF[state], rng.Float64())
		}
		corpus = append(corpus, seq)
	}
	return corpus, warnings
}
