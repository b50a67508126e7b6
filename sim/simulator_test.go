package sim

import (
	"reflect"
	"testing"
)

func mustBuild(t *testing.T, counts [][]int64, partition []int, freq []float64) *Automaton {
	t.Helper()
	a, err := BuildAutomaton(counts, partition, freq)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// twoStateAutomaton is a well-mixed 2-state, 3-symbol model with no
// degenerate rows.
func twoStateAutomaton(t *testing.T) *Automaton {
	t.Helper()
	return mustBuild(t,
		[][]int64{
			{6, 2, 2},
			{2, 6, 2},
			{3, 3, 4},
		},
		[]int{0, 0, 1},
		[]float64{4, 2, 3},
	)
}

func TestSimulate_SameSeedIdenticalOutput(t *testing.T) {
	a := twoStateAutomaton(t)
	lengths := []int{5, 0, 12, 3, 7}

	first, _ := Simulate(a, lengths, NewRand(1234))
	second, _ := Simulate(a, lengths, NewRand(1234))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different corpora:\n%v\n%v", first, second)
	}

	third, _ := Simulate(a, lengths, NewRand(1235))
	if reflect.DeepEqual(first, third) {
		t.Error("different seeds produced identical corpora")
	}
}

func TestSimulate_LengthProfilePreserved(t *testing.T) {
	a := twoStateAutomaton(t)
	lengths := []int{3, 0, 0, 9, 1, 4}

	corpus, _ := Simulate(a, lengths, NewRand(7))
	if got := corpus.Lengths(); !reflect.DeepEqual(got, lengths) {
		t.Errorf("corpus lengths = %v, want %v", got, lengths)
	}
}

func TestCorpus_MapStates(t *testing.T) {
	corpus := Corpus{{0, 2, 1}, {}, {2, 2}}
	got := corpus.MapStates([]int{0, 0, 1})
	want := Corpus{{0, 1, 0}, {}, {1, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MapStates = %v, want %v", got, want)
	}
}

func TestSimulate_ZeroLengthYieldsEmptySequence(t *testing.T) {
	a := twoStateAutomaton(t)
	corpus, warnings := Simulate(a, []int{0, 0}, NewRand(1))
	if len(corpus) != 2 || len(corpus[0]) != 0 || len(corpus[1]) != 0 {
		t.Errorf("corpus = %v, want two empty sequences", corpus)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestSimulate_IsolatedStatesNeverMixSymbols(t *testing.T) {
	// Pure self-loop chain: state A holds symbols {0,1}, state B holds {2}.
	// A sequence that starts in A must never contain symbol 2.
	a := mustBuild(t,
		[][]int64{
			{10, 0, 0},
			{0, 10, 0},
			{0, 0, 10},
		},
		[]int{0, 0, 1},
		[]float64{1, 1, 1},
	)
	corpus, _ := Simulate(a, []int{50, 50, 50, 50}, NewRand(99))
	for i, seq := range corpus {
		if len(seq) == 0 {
			continue
		}
		startsInB := seq[0] == 2
		for _, sym := range seq {
			if (sym == 2) != startsInB {
				t.Fatalf("sequence %d mixes state alphabets: %v", i, seq)
			}
		}
	}
}

func TestSimulate_ZeroTransitionRowClipsAndWarns(t *testing.T) {
	// State 1 has no observed outgoing transitions. Once entered, the clip
	// policy pins the chain there, so symbol 2 repeats to the end.
	a := mustBuild(t,
		[][]int64{
			{5, 5, 5},
			{5, 5, 5},
			{0, 0, 0},
		},
		[]int{0, 0, 1},
		[]float64{1, 1, 1},
	)
	corpus, warnings := Simulate(a, []int{200}, NewRand(3))
	seq := corpus[0]

	entered := false
	for i, sym := range seq {
		if sym == 2 {
			entered = true
			continue
		}
		if entered {
			t.Fatalf("chain left the zero-row state at position %d: %v", i, seq[:i+1])
		}
	}
	if !entered {
		t.Skip("seed never reached the zero-row state; pick another seed")
	}
	if len(warnings) == 0 {
		t.Fatal("expected a degeneracy warning for the all-zero transition row")
	}
	if warnings[0].Kind != WarnNumericalDegeneracy {
		t.Errorf("warning kind = %s, want %s", warnings[0].Kind, WarnNumericalDegeneracy)
	}
}
