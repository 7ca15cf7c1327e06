package similarity

import "fmt"

// Curve role names used in comparison errors.
const (
	RoleBaseline = "baseline"
	RoleSample   = "sample"
)

// ComparisonError reports a malformed input curve. It names which of the two
// curves (baseline or sample) failed shape validation so the caller can
// surface a precise message instead of a generic failure.
type ComparisonError struct {
	Role string // RoleBaseline or RoleSample
	Err  error
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("%s curve: %v", e.Role, e.Err)
}

func (e *ComparisonError) Unwrap() error {
	return e.Err
}
