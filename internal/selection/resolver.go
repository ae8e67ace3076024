// Package selection matches free-text replies against previously offered
// option lists.
package selection

import "errors"

// ErrNoMatch reports that the reply text matched no offered candidate.
var ErrNoMatch = errors.New("no matching candidate")

// Candidate is one machine-offered option a user selects by echoing its
// display text back verbatim.
type Candidate interface {
	// KeyboardValue returns the literal string shown on the reply keyboard.
	KeyboardValue() string
}

// Resolve returns the first candidate whose keyboard value equals text.
// Matching is exact and case-sensitive. When two candidates share a
// keyboard value (two series with the same title and year can), the first
// in list order wins; that tie-break is a documented contract, not an
// error.
func Resolve[T Candidate](candidates []T, text string) (T, error) {
	for _, candidate := range candidates {
		if candidate.KeyboardValue() == text {
			return candidate, nil
		}
	}
	var zero T
	return zero, ErrNoMatch
}
