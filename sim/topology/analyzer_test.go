package topology

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpus-sim/corpus-sim/sim"
)

func mustBuild(t *testing.T, counts [][]int64, partition []int, freq []float64) *sim.Automaton {
	t.Helper()
	a, err := sim.BuildAutomaton(counts, partition, freq)
	require.NoError(t, err)
	return a
}

// reversibleChain builds transition matrix [[0.9,0.1],[0.2,0.8]] with
// stationary distribution [2/3, 1/3] and second eigenvalue 0.7.
func reversibleChain(t *testing.T) *sim.Automaton {
	t.Helper()
	return mustBuild(t, [][]int64{{90, 10}, {20, 80}}, []int{0, 1}, []float64{1, 1})
}

func TestAnalyze_DominantEigenvalueIsOne(t *testing.T) {
	report := Analyze(reversibleChain(t), Config{})
	require.NotEmpty(t, report.Eigenvalues)
	assert.InDelta(t, 1.0, report.Eigenvalues[0].Abs, 1e-9)
	assert.Empty(t, report.Warnings)
}

func TestAnalyze_SpectrumAndMixing(t *testing.T) {
	report := Analyze(reversibleChain(t), Config{})

	require.Len(t, report.Eigenvalues, 2)
	assert.InDelta(t, 0.7, report.Eigenvalues[1].Abs, 1e-9)
	assert.InDelta(t, 0.3, report.SpectralGap, 1e-9)
	require.True(t, report.MixingDefined)
	assert.InDelta(t, 1/0.3, report.MixingTime, 1e-6)

	// The TV cross-check must agree with the gap heuristic: distance from
	// stationarity decays like 0.7^k.
	assert.Less(t, report.TVDistance[32], 1e-3)
	assert.Less(t, report.TVDistance[8], report.TVDistance[2])
}

func TestAnalyze_SteadyStateMatchesOccupancy(t *testing.T) {
	report := Analyze(reversibleChain(t), Config{})

	require.Len(t, report.SteadyState, 2)
	assert.InDelta(t, 2.0/3, report.SteadyState[0], 1e-9)
	assert.InDelta(t, 1.0/3, report.SteadyState[1], 1e-9)
	// Empirical occupancy cross-check: after 32 steps the propagated
	// initial distribution is numerically stationary.
	assert.Less(t, report.OccupancyError, 1e-4)
}

func TestAnalyze_DetailedBalanceHasNoNetFlow(t *testing.T) {
	// pi[0]*P(0,1) = (2/3)(0.1) = (1/3)(0.2) = pi[1]*P(1,0).
	report := Analyze(reversibleChain(t), Config{})
	require.Len(t, report.Flows, 1)
	flow := report.Flows[0]
	assert.InDelta(t, 0, flow.Net, 1e-9)
	require.True(t, flow.RatioDefined)
	assert.InDelta(t, 0.5, flow.Ratio, 1e-12)
}

func TestAnalyze_DwellTimes(t *testing.T) {
	report := Analyze(reversibleChain(t), Config{})
	require.Len(t, report.Dwell, 2)
	assert.InDelta(t, 10.0, report.Dwell[0].ExpectedDwell, 1e-9) // 1/(1-0.9)
	assert.InDelta(t, 5.0, report.Dwell[1].ExpectedDwell, 1e-9)  // 1/(1-0.8)
	assert.False(t, report.Dwell[0].Unbounded)
}

func TestAnalyze_AbsorbingSelfLoopReportedUnbounded(t *testing.T) {
	// Two isolated self-loop states: dwell is undefined, not an error.
	a := mustBuild(t, [][]int64{{10, 0}, {0, 10}}, []int{0, 1}, []float64{1, 1})
	report := Analyze(a, Config{})

	for _, d := range report.Dwell {
		assert.True(t, d.Unbounded, "state %d has self-loop 1 and must be unbounded", d.State)
	}
	// Identity matrix: repeated eigenvalue 1, zero spectral gap, so the
	// 1/gap mixing estimate is undefined.
	assert.False(t, report.MixingDefined)
	assert.Zero(t, report.SpectralGap)
	assert.Empty(t, report.Flows)
}

func TestAnalyze_EdgeBands(t *testing.T) {
	report := Analyze(reversibleChain(t), Config{})
	// 0.9 and 0.8 self-loops plus 0.1 cross edge are strong; 0.2 is too.
	assert.Equal(t, 4, report.BandCounts[BandStrong])
	assert.Len(t, report.Edges, 4)

	custom := Analyze(reversibleChain(t), Config{Strong: 0.5, Moderate: 0.15, Weak: 0.05})
	assert.Equal(t, 2, custom.BandCounts[BandStrong])   // 0.9, 0.8
	assert.Equal(t, 1, custom.BandCounts[BandModerate]) // 0.2
	assert.Equal(t, 1, custom.BandCounts[BandWeak])     // 0.1
}

func TestAnalyze_Hubs(t *testing.T) {
	// Hub chain: states 1 and 2 both route dominantly into state 0.
	a := mustBuild(t,
		[][]int64{
			{2, 4, 4},
			{8, 1, 1},
			{8, 1, 1},
		},
		[]int{0, 1, 2},
		[]float64{1, 1, 1},
	)
	report := Analyze(a, Config{})
	require.Len(t, report.Hubs, 3)

	hub := report.Hubs[0]
	assert.ElementsMatch(t, []int{1, 2}, hub.DominantOut, "state 0 splits evenly between 1 and 2")
	assert.InDelta(t, 0.4, hub.OutProb, 1e-12)
	assert.NotEmpty(t, hub.DominantIn)

	assert.Equal(t, []int{0}, report.Hubs[1].DominantOut)
	assert.InDelta(t, 0.8, report.Hubs[1].OutProb, 1e-12)
}

func TestAnalyze_ZeroRowShrinksDominantEigenvalueAndWarns(t *testing.T) {
	// A state with no outgoing mass breaks row-stochasticity; the analyzer
	// must verify the unit eigenvalue rather than assume it.
	a, err := sim.BuildAutomaton([][]int64{{5, 5}, {0, 0}}, []int{0, 1}, []float64{1, 1})
	require.NoError(t, err)

	report := Analyze(a, Config{})
	require.NotEmpty(t, report.Warnings)
	found := false
	for _, w := range report.Warnings {
		if w.Kind == sim.WarnNumericalDegeneracy {
			found = true
		}
	}
	assert.True(t, found, "expected a NumericalDegeneracy warning for the sub-unit dominant eigenvalue")
	assert.Less(t, report.Eigenvalues[0].Abs, 1.0)
}

func TestAnalyze_SingleState(t *testing.T) {
	a := mustBuild(t, [][]int64{{3}}, []int{0}, []float64{1})
	report := Analyze(a, Config{})
	require.Len(t, report.SteadyState, 1)
	assert.InDelta(t, 1.0, report.SteadyState[0], 1e-12)
	assert.Equal(t, 1.0, report.SpectralGap)
	assert.True(t, report.MixingDefined)
}

func TestMatPow(t *testing.T) {
	report := Analyze(reversibleChain(t), Config{TVSteps: []int{1}})
	// One step from a basis row is still far from stationary.
	assert.Greater(t, report.TVDistance[1], 0.0)
	if math.IsNaN(report.TVDistance[1]) {
		t.Fatal("TV distance is NaN")
	}
}
