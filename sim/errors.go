package sim

import "fmt"

// ConfigurationError reports malformed pipeline inputs (non-square counts,
// partition length mismatch, out-of-range labels, negative values).
// It is fatal: raised before any computation begins and never retried.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Msg
}

// configErrorf builds a *ConfigurationError with fmt-style formatting.
func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// WarningKind labels a recoverable numerical condition recorded in reports.
type WarningKind string

const (
	// WarnNumericalDegeneracy covers zero-variance metric distributions,
	// all-zero transition rows hit mid-simulation, and near-zero stationary
	// mass. The run continues with the documented fallback.
	WarnNumericalDegeneracy WarningKind = "numerical_degeneracy"
)

// Warning records a recovered condition. Warnings never abort a run; they
// surface in the final report so callers can judge result quality.
type Warning struct {
	Kind   WarningKind `yaml:"kind" json:"kind"`
	Detail string      `yaml:"detail" json:"detail"`
}

// Degeneracyf builds a NumericalDegeneracy warning with fmt-style formatting.
func Degeneracyf(format string, args ...any) Warning {
	return Warning{Kind: WarnNumericalDegeneracy, Detail: fmt.Sprintf(format, args...)}
}
