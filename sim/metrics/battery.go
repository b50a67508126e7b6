// Package metrics computes the fixed corpus statistic battery used to
// compare real and synthetic sequence corpora. Every function is a pure
// function of the corpus it is given; none care whether the corpus was
// observed or generated.
package metrics

// ID names one statistic in the battery. The battery is sealed: the five
// IDs below are the whole set, and Extract always populates all of them so
// reports across different automatons stay directly comparable.
type ID string

const (
	// ZipfExponent is the slope of the log-log rank/frequency fit.
	ZipfExponent ID = "zipf_exponent"
	// DepletedFraction is the share of supported transition cells whose
	// observed count falls below the depletion ratio of expectation.
	DepletedFraction ID = "depleted_fraction"
	// DepletionAsymmetry is the share of depleted cells whose mirror cell
	// is supported but not depleted.
	DepletionAsymmetry ID = "depletion_asymmetry"
	// BoundaryMI is the mutual information, in bits, between the last
	// symbol of one sequence and the first symbol of the next.
	BoundaryMI ID = "boundary_mutual_information"
	// ActiveSymbols is the count of distinct symbols occurring in the corpus.
	ActiveSymbols ID = "active_symbols"
)

// All returns the battery IDs in report order.
func All() []ID {
	return []ID{ZipfExponent, DepletedFraction, DepletionAsymmetry, BoundaryMI, ActiveSymbols}
}

// Vector maps each battery ID to its value for one corpus.
type Vector map[ID]float64

// Config parameterizes corpus statistic extraction.
type Config struct {
	// Symbols is the alphabet size used to shape the observed transition
	// matrix. 0 means infer from the largest symbol seen.
	Symbols int
	// MinSupport is the minimum expected count for a transition cell to
	// enter the depletion tally (default 5).
	MinSupport float64
	// DepletionRatio is the observed/expected threshold below which a
	// supported cell counts as depleted (default 0.2).
	DepletionRatio float64
}

func (c Config) withDefaults() Config {
	if c.MinSupport == 0 {
		c.MinSupport = 5
	}
	if c.DepletionRatio == 0 {
		c.DepletionRatio = 0.2
	}
	return c
}

// Extract computes the full battery for one corpus.
func Extract(corpus [][]int, cfg Config) Vector {
	cfg = cfg.withDefaults()
	dep := Depletion(ObservedTransitions(corpus, cfg.Symbols), cfg.MinSupport, cfg.DepletionRatio)
	return Vector{
		ZipfExponent:       ZipfSlope(corpus),
		DepletedFraction:   dep.DepletedFraction(),
		DepletionAsymmetry: dep.Asymmetry,
		BoundaryMI:         BoundaryMutualInformation(corpus),
		ActiveSymbols:      float64(CountActiveSymbols(corpus)),
	}
}

// CountActiveSymbols returns the number of distinct symbols with non-zero
// occurrence in the corpus.
func CountActiveSymbols(corpus [][]int) int {
	seen := make(map[int]struct{})
	for _, seq := range corpus {
		for _, sym := range seq {
			seen[sym] = struct{}{}
		}
	}
	return len(seen)
}
