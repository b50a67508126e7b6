package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/corpus-sim/corpus-sim/sim"
)

// InputBundle is the YAML document supplied by the external classification
// stage: the observed symbol-transition counts, the symbol-to-state
// partition, per-symbol class frequencies, and either a reference
// sequence-length profile or the real corpus itself (or both).
type InputBundle struct {
	Counts         [][]int64 `yaml:"counts"`
	Partition      []int     `yaml:"partition"`
	ClassFrequency []float64 `yaml:"class_frequency"`
	// Lengths is the target per-sequence length profile. Optional when
	// RealCorpus is present; it then defaults to the real lengths.
	Lengths    []int   `yaml:"lengths,omitempty"`
	RealCorpus [][]int `yaml:"real_corpus,omitempty"`
}

// LoadInputBundle reads and validates an input bundle.
func LoadInputBundle(path string) (*InputBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input bundle: %w", err)
	}
	var bundle InputBundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parsing input bundle %s: %w", path, err)
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// Validate checks the bundle's shape before any computation begins. Matrix
// shape and value-range errors come from sim.BuildAutomaton itself; this
// covers the bundle-level requirements.
func (b *InputBundle) Validate() error {
	if len(b.Counts) == 0 {
		return &sim.ConfigurationError{Msg: "input bundle has no counts matrix"}
	}
	if len(b.Lengths) == 0 && len(b.RealCorpus) == 0 {
		return &sim.ConfigurationError{Msg: "input bundle needs lengths or a real corpus"}
	}
	for i, l := range b.Lengths {
		if l < 0 {
			return &sim.ConfigurationError{Msg: fmt.Sprintf("lengths[%d] = %d is negative", i, l)}
		}
	}
	n := len(b.Counts)
	for _, seq := range b.RealCorpus {
		for _, symbol := range seq {
			if symbol < 0 || symbol >= n {
				return &sim.ConfigurationError{
					Msg: fmt.Sprintf("real corpus symbol %d outside alphabet [0,%d)", symbol, n)}
			}
		}
	}
	return nil
}

// LengthProfile returns the simulation length profile: the explicit lengths
// when given, otherwise the real corpus's lengths.
func (b *InputBundle) LengthProfile() []int {
	if len(b.Lengths) > 0 {
		return b.Lengths
	}
	return sim.Corpus(b.RealCorpus).Lengths()
}
