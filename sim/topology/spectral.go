package topology

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/corpus-sim/corpus-sim/sim"
)

// spectral fills the eigenstructure fields of the report: full spectrum,
// spectral gap, 1/gap mixing-time heuristic with its total-variation
// cross-check, and the steady state with its empirical occupancy check.
func spectral(a *sim.Automaton, cfg Config, report *Report) {
	k := a.States
	if k == 0 {
		return
	}

	p := mat.NewDense(k, k, nil)
	pt := mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			p.Set(i, j, a.Transition[i][j])
			pt.Set(i, j, a.Transition[j][i])
		}
	}

	// Left eigenvectors of P are right eigenvectors of its transpose.
	var eig mat.Eigen
	if !eig.Factorize(pt, mat.EigenRight) {
		report.Warnings = append(report.Warnings,
			sim.Degeneracyf("eigendecomposition of the transition matrix failed to converge"))
		report.SteadyState = propagate(a.Initial, p, 1000)
		return
	}
	values := eig.Values(nil)
	var vectors mat.CDense
	eig.VectorsTo(&vectors)

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return cmplx.Abs(values[order[x]]) > cmplx.Abs(values[order[y]])
	})
	for _, idx := range order {
		v := values[idx]
		report.Eigenvalues = append(report.Eigenvalues, Eigenvalue{
			Re:  real(v),
			Im:  imag(v),
			Abs: cmplx.Abs(v),
		})
	}

	// A row-stochastic matrix must have dominant eigenvalue 1. Verify
	// rather than assume: all-zero rows (or numerical trouble) shrink it.
	top := report.Eigenvalues[0].Abs
	if math.Abs(top-1) > cfg.Tolerance {
		report.Warnings = append(report.Warnings, sim.Degeneracyf(
			"dominant eigenvalue magnitude %.9f deviates from 1", top))
	}

	if k > 1 {
		report.SpectralGap = 1 - report.Eigenvalues[1].Abs
	} else {
		report.SpectralGap = 1
	}
	if report.SpectralGap > 0 {
		report.MixingTime = 1 / report.SpectralGap
		report.MixingDefined = true
	}

	// Steady state: eigenvector for the eigenvalue closest to 1.
	best := 0
	for i, v := range values {
		if cmplx.Abs(v-1) < cmplx.Abs(values[best]-1) {
			best = i
		}
	}
	steady := make([]float64, k)
	total := 0.0
	for i := 0; i < k; i++ {
		steady[i] = real(vectors.At(i, best))
		total += steady[i]
	}
	if math.Abs(total) < 1e-12 {
		report.Warnings = append(report.Warnings, sim.Degeneracyf(
			"near-zero stationary mass (sum %.3e); steady state left unnormalized", total))
	} else {
		for i := range steady {
			steady[i] /= total
		}
	}
	report.SteadyState = steady

	// Cross-validate the 1/gap heuristic: worst-row TV distance of P^n
	// from the steady state at each configured step.
	for _, n := range cfg.TVSteps {
		report.TVDistance[n] = worstRowTV(p, steady, n)
	}

	// Empirical occupancy marginal: the initial distribution propagated
	// through the largest configured step count.
	maxStep := 0
	for _, n := range cfg.TVSteps {
		if n > maxStep {
			maxStep = n
		}
	}
	report.Occupancy = propagate(a.Initial, p, maxStep)
	for i := range steady {
		diff := math.Abs(report.Occupancy[i] - steady[i])
		if diff > report.OccupancyError {
			report.OccupancyError = diff
		}
	}
}

// worstRowTV returns max over basis rows i of TV(P^n[i,:], pi).
func worstRowTV(p *mat.Dense, pi []float64, n int) float64 {
	k := len(pi)
	power := matPow(p, n)
	worst := 0.0
	for i := 0; i < k; i++ {
		tv := 0.0
		for j := 0; j < k; j++ {
			tv += math.Abs(power.At(i, j) - pi[j])
		}
		tv /= 2
		if tv > worst {
			worst = tv
		}
	}
	return worst
}

func matPow(p *mat.Dense, n int) *mat.Dense {
	k, _ := p.Dims()
	result := mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		result.Set(i, i, 1)
	}
	for step := 0; step < n; step++ {
		var next mat.Dense
		next.Mul(result, p)
		result.CloneFrom(&next)
	}
	return result
}

// propagate applies the transition matrix to a distribution n times.
func propagate(dist []float64, p *mat.Dense, n int) []float64 {
	k := len(dist)
	cur := make([]float64, k)
	copy(cur, dist)
	next := make([]float64, k)
	for step := 0; step < n; step++ {
		for j := 0; j < k; j++ {
			sum := 0.0
			for i := 0; i < k; i++ {
				sum += cur[i] * p.At(i, j)
			}
			next[j] = sum
		}
		cur, next = next, cur
	}
	return cur
}
