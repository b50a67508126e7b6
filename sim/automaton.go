package sim

import "gonum.org/v1/gonum/floats"

// Automaton is the compact Markov model built from an observed symbol
// transition matrix and a caller-supplied partition of symbols into states.
// It is immutable after BuildAutomaton returns: one Automaton per
// (counts, partition, frequency) triple, never mutated, shared freely
// across goroutines.
type Automaton struct {
	States  int `yaml:"states" json:"states"`   // K
	Symbols int `yaml:"symbols" json:"symbols"` // N

	// Transition[s][t] is P(next state = t | current state = s). Each row
	// sums to 1 or is entirely zero (a state with no observed outgoing
	// transitions, which is a fact about the corpus, not an error).
	Transition [][]float64 `yaml:"transition" json:"transition"`

	// Emission[s][sym] is P(emit sym | state = s). Zero unless the
	// partition assigns sym to s; each row sums to 1 or is entirely zero.
	Emission [][]float64 `yaml:"emission" json:"emission"`

	// Initial is the start-state distribution, built from per-state summed
	// class frequency and normalized to sum 1.
	Initial []float64 `yaml:"initial" json:"initial"`
}

// ZeroTransitionRows returns the states whose transition row is all-zero.
// Simulation from such a state falls back to the clip policy (see Simulate).
func (a *Automaton) ZeroTransitionRows() []int {
	var rows []int
	for s, row := range a.Transition {
		if floats.Sum(row) == 0 {
			rows = append(rows, s)
		}
	}
	return rows
}

// BuildAutomaton compresses an NxN symbol transition count matrix into a
// KxK state automaton using the given partition (length N, values in [0,K))
// and per-symbol class frequencies (length N, non-negative).
//
// Deterministic and side-effect free: identical inputs yield bit-identical
// automata. Returns *ConfigurationError for malformed shapes or negative
// values; it never panics on valid shapes.
func BuildAutomaton(counts [][]int64, partition []int, classFreq []float64) (*Automaton, error) {
	n := len(counts)
	for i, row := range counts {
		if len(row) != n {
			return nil, configErrorf("counts matrix is not square: row %d has %d columns, want %d", i, len(row), n)
		}
		for j, c := range row {
			if c < 0 {
				return nil, configErrorf("counts[%d][%d] = %d is negative", i, j, c)
			}
		}
	}
	if len(partition) != n {
		return nil, configErrorf("partition length %d does not match symbol count %d", len(partition), n)
	}
	if len(classFreq) != n {
		return nil, configErrorf("class frequency length %d does not match symbol count %d", len(classFreq), n)
	}
	for sym, f := range classFreq {
		if f < 0 {
			return nil, configErrorf("class frequency of symbol %d is negative (%g)", sym, f)
		}
	}

	k := 0
	for sym, s := range partition {
		if s < 0 {
			return nil, configErrorf("partition label of symbol %d is negative (%d)", sym, s)
		}
		if s+1 > k {
			k = s + 1
		}
	}

	// Aggregate symbol transitions into state transitions.
	transition := newMatrix(k, k)
	for i, row := range counts {
		for j, c := range row {
			transition[partition[i]][partition[j]] += float64(c)
		}
	}
	for s := range transition {
		normalizeRow(transition[s])
	}

	// Emission rows carry class frequency mass restricted to each state.
	emission := newMatrix(k, n)
	for sym, s := range partition {
		emission[s][sym] = classFreq[sym]
	}
	for s := range emission {
		normalizeRow(emission[s])
	}

	// Initial distribution: per-state summed class frequency.
	initial := make([]float64, k)
	for sym, s := range partition {
		initial[s] += classFreq[sym]
	}
	normalizeRow(initial)

	return &Automaton{
		States:     k,
		Symbols:    n,
		Transition: transition,
		Emission:   emission,
		Initial:    initial,
	}, nil
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// normalizeRow scales row to sum 1 in place. All-zero rows stay all-zero.
func normalizeRow(row []float64) {
	total := floats.Sum(row)
	if total == 0 {
		return
	}
	floats.Scale(1/total, row)
}
