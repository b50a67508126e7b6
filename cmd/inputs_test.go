package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/corpus-sim/corpus-sim/sim"
)

func writeBundle(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inputs.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadInputBundle_RoundTrip(t *testing.T) {
	path := writeBundle(t, `
counts:
  - [10, 2]
  - [3, 5]
partition: [0, 1]
class_frequency: [4, 6]
lengths: [5, 0, 7]
real_corpus:
  - [0, 1, 0]
  - [1, 1]
`)
	bundle, err := LoadInputBundle(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(bundle.Lengths, []int{5, 0, 7}) {
		t.Errorf("lengths = %v", bundle.Lengths)
	}
	if got := bundle.LengthProfile(); !reflect.DeepEqual(got, []int{5, 0, 7}) {
		t.Errorf("LengthProfile() = %v, want explicit lengths", got)
	}

	a, err := sim.BuildAutomaton(bundle.Counts, bundle.Partition, bundle.ClassFrequency)
	if err != nil {
		t.Fatal(err)
	}
	if a.States != 2 {
		t.Errorf("states = %d, want 2", a.States)
	}
}

func TestInputBundle_LengthProfileDefaultsToRealCorpus(t *testing.T) {
	bundle := &InputBundle{
		Counts:         [][]int64{{1}},
		Partition:      []int{0},
		ClassFrequency: []float64{1},
		RealCorpus:     [][]int{{0, 0, 0}, {0}},
	}
	if err := bundle.Validate(); err != nil {
		t.Fatal(err)
	}
	if got := bundle.LengthProfile(); !reflect.DeepEqual(got, []int{3, 1}) {
		t.Errorf("LengthProfile() = %v, want [3 1]", got)
	}
}

func TestInputBundle_ValidationErrors(t *testing.T) {
	cases := []struct {
		name   string
		bundle InputBundle
	}{
		{"no counts", InputBundle{Lengths: []int{1}}},
		{"no lengths or corpus", InputBundle{Counts: [][]int64{{1}}}},
		{"negative length", InputBundle{Counts: [][]int64{{1}}, Lengths: []int{3, -1}}},
		{"corpus symbol out of range", InputBundle{
			Counts:     [][]int64{{1}},
			RealCorpus: [][]int{{0, 5}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.bundle.Validate()
			var cfgErr *sim.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("got %v, want *sim.ConfigurationError", err)
			}
		})
	}
}

func TestLoadInputBundle_MissingFile(t *testing.T) {
	if _, err := LoadInputBundle(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing bundle file")
	}
}

func TestParseTailOverrides(t *testing.T) {
	tails, err := parseTailOverrides([]string{"active_symbols=two-sided", "zipf_exponent=upper"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tails) != 2 {
		t.Fatalf("parsed %d overrides, want 2", len(tails))
	}

	for _, bad := range []string{"no-equals", "unknown_metric=lower", "zipf_exponent=sideways"} {
		if _, err := parseTailOverrides([]string{bad}); err == nil {
			t.Errorf("override %q should be rejected", bad)
		}
	}
}
