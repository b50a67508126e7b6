// Package topology analyzes the automaton's state-transition matrix as a
// weighted directed graph: edge strength bands, dwell times, net flow
// asymmetry, steady state, spectrum, and routing hubs. It consumes only the
// KxK transition matrix (plus the initial distribution for the occupancy
// cross-check) and is independent of any simulation run.
package topology

import (
	"github.com/corpus-sim/corpus-sim/sim"
)

// Band classifies one directed edge's transition probability.
type Band string

const (
	BandStrong     Band = "strong"
	BandModerate   Band = "moderate"
	BandWeak       Band = "weak"
	BandNegligible Band = "negligible"
)

// Config groups the analyzer thresholds.
type Config struct {
	// Band cut-offs: strong >= Strong, moderate >= Moderate, weak >= Weak,
	// negligible below. Defaults 0.10 / 0.03 / 0.01.
	Strong   float64
	Moderate float64
	Weak     float64

	// TVSteps are the matrix-power exponents at which total-variation
	// distance from the steady state is measured, cross-validating the
	// 1/gap mixing-time heuristic. Default {2, 4, 8, 16, 32}.
	TVSteps []int

	// Tolerance bounds the allowed deviation of the dominant eigenvalue
	// from 1 before a degeneracy warning fires. Default 1e-6.
	Tolerance float64
}

func (c Config) withDefaults() Config {
	if c.Strong == 0 {
		c.Strong = 0.10
	}
	if c.Moderate == 0 {
		c.Moderate = 0.03
	}
	if c.Weak == 0 {
		c.Weak = 0.01
	}
	if len(c.TVSteps) == 0 {
		c.TVSteps = []int{2, 4, 8, 16, 32}
	}
	if c.Tolerance == 0 {
		c.Tolerance = 1e-6
	}
	return c
}

func (c Config) band(p float64) Band {
	switch {
	case p >= c.Strong:
		return BandStrong
	case p >= c.Moderate:
		return BandModerate
	case p >= c.Weak:
		return BandWeak
	default:
		return BandNegligible
	}
}

// Edge is one non-zero directed transition with its strength band.
type Edge struct {
	From        int     `yaml:"from" json:"from"`
	To          int     `yaml:"to" json:"to"`
	Probability float64 `yaml:"probability" json:"probability"`
	Band        Band    `yaml:"band" json:"band"`
}

// DwellEntry reports a state's self-loop probability and the implied
// expected dwell time 1/(1-p) of the geometric stay distribution.
type DwellEntry struct {
	State    int     `yaml:"state" json:"state"`
	SelfLoop float64 `yaml:"self_loop" json:"self_loop"`
	// ExpectedDwell is meaningless when Unbounded is set (self-loop
	// probability 1: the state never releases).
	ExpectedDwell float64 `yaml:"expected_dwell" json:"expected_dwell"`
	Unbounded     bool    `yaml:"unbounded,omitempty" json:"unbounded,omitempty"`
}

// FlowEntry reports the net probability mass exchanged between an unordered
// state pair, with each direction weighted by its source state's stationary
// occupancy.
type FlowEntry struct {
	A       int     `yaml:"a" json:"a"`
	B       int     `yaml:"b" json:"b"`
	Forward float64 `yaml:"forward" json:"forward"` // pi[A] * P(A->B)
	Back    float64 `yaml:"back" json:"back"`       // pi[B] * P(B->A)
	Net     float64 `yaml:"net" json:"net"`         // Forward - Back
	// Ratio is P(A->B)/P(B->A); RatioDefined is false when P(B->A) = 0.
	Ratio        float64 `yaml:"ratio,omitempty" json:"ratio,omitempty"`
	RatioDefined bool    `yaml:"ratio_defined" json:"ratio_defined"`
}

// HubEntry summarizes a state's dominant routing, asserting structure only:
// the strongest outgoing edge(s) excluding the self-loop, and the strongest
// stationary-mass-weighted incoming source(s).
type HubEntry struct {
	State       int     `yaml:"state" json:"state"`
	DominantOut []int   `yaml:"dominant_out" json:"dominant_out"`
	OutProb     float64 `yaml:"out_probability" json:"out_probability"`
	DominantIn  []int   `yaml:"dominant_in" json:"dominant_in"`
	InMass      float64 `yaml:"in_mass" json:"in_mass"`
}

// Eigenvalue is one spectrum entry, sorted by descending magnitude.
type Eigenvalue struct {
	Re  float64 `yaml:"re" json:"re"`
	Im  float64 `yaml:"im" json:"im"`
	Abs float64 `yaml:"abs" json:"abs"`
}

// Report bundles the full topology analysis.
type Report struct {
	Edges      []Edge       `yaml:"edges" json:"edges"`
	BandCounts map[Band]int `yaml:"band_counts" json:"band_counts"`
	Dwell      []DwellEntry `yaml:"dwell" json:"dwell"`
	Flows      []FlowEntry  `yaml:"flows" json:"flows"`
	Hubs       []HubEntry   `yaml:"hubs" json:"hubs"`

	SteadyState []float64 `yaml:"steady_state" json:"steady_state"`
	// Occupancy is the empirical cross-check: the initial distribution
	// propagated through the largest TV step. OccupancyError is its max
	// absolute deviation from the eigenvector steady state.
	Occupancy      []float64 `yaml:"occupancy" json:"occupancy"`
	OccupancyError float64   `yaml:"occupancy_error" json:"occupancy_error"`

	Eigenvalues []Eigenvalue `yaml:"eigenvalues" json:"eigenvalues"`
	SpectralGap float64      `yaml:"spectral_gap" json:"spectral_gap"`
	// MixingTime is the 1/gap heuristic; MixingDefined is false when the
	// gap is 0 (a periodic or reducible chain that never mixes).
	MixingTime    float64 `yaml:"mixing_time,omitempty" json:"mixing_time,omitempty"`
	MixingDefined bool    `yaml:"mixing_defined" json:"mixing_defined"`
	// TVDistance[k] is the worst-row total-variation distance of P^k from
	// the steady state, for each configured step k.
	TVDistance map[int]float64 `yaml:"tv_distance" json:"tv_distance"`

	Warnings []sim.Warning `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}

// Analyze runs the full battery of structural checks on the automaton's
// transition matrix.
func Analyze(a *sim.Automaton, cfg Config) *Report {
	cfg = cfg.withDefaults()
	p := a.Transition
	k := a.States

	report := &Report{
		BandCounts: map[Band]int{},
		TVDistance: map[int]float64{},
	}

	// Edge bands. Zero-probability cells are absent edges, not negligible
	// ones, and stay out of the tally.
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			if p[i][j] == 0 {
				continue
			}
			band := cfg.band(p[i][j])
			report.Edges = append(report.Edges, Edge{From: i, To: j, Probability: p[i][j], Band: band})
			report.BandCounts[band]++
		}
	}

	// Dwell times.
	for i := 0; i < k; i++ {
		entry := DwellEntry{State: i, SelfLoop: p[i][i]}
		if p[i][i] >= 1 {
			entry.Unbounded = true
		} else {
			entry.ExpectedDwell = 1 / (1 - p[i][i])
		}
		report.Dwell = append(report.Dwell, entry)
	}

	spectral(a, cfg, report)

	// Flow asymmetry and hubs need the stationary occupancy.
	pi := report.SteadyState
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if p[i][j] == 0 && p[j][i] == 0 {
				continue
			}
			flow := FlowEntry{
				A:       i,
				B:       j,
				Forward: pi[i] * p[i][j],
				Back:    pi[j] * p[j][i],
			}
			flow.Net = flow.Forward - flow.Back
			if p[j][i] > 0 {
				flow.Ratio = p[i][j] / p[j][i]
				flow.RatioDefined = true
			}
			report.Flows = append(report.Flows, flow)
		}
	}

	for i := 0; i < k; i++ {
		hub := HubEntry{State: i}
		for j := 0; j < k; j++ {
			if j == i {
				continue
			}
			switch {
			case p[i][j] > hub.OutProb:
				hub.OutProb = p[i][j]
				hub.DominantOut = []int{j}
			case p[i][j] == hub.OutProb && p[i][j] > 0:
				hub.DominantOut = append(hub.DominantOut, j)
			}
			in := pi[j] * p[j][i]
			switch {
			case in > hub.InMass:
				hub.InMass = in
				hub.DominantIn = []int{j}
			case in == hub.InMass && in > 0:
				hub.DominantIn = append(hub.DominantIn, j)
			}
		}
		report.Hubs = append(report.Hubs, hub)
	}

	return report
}
