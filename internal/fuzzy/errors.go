package fuzzy

import "errors"

var (
	// ErrInvalidShape reports a malformed universe, term, or membership function.
	ErrInvalidShape = errors.New("invalid fuzzy shape")
	// ErrUnknownVariable reports a rule or input naming an undefined variable.
	ErrUnknownVariable = errors.New("unknown fuzzy variable")
	// ErrUnknownTerm reports a rule naming a term its variable does not define.
	ErrUnknownTerm = errors.New("unknown fuzzy term")
	// ErrMissingInput reports an inference call without a value for some input variable.
	ErrMissingInput = errors.New("missing fuzzy input")
	// ErrEmptyOutput reports an aggregated output with zero area, i.e. no rule fired.
	ErrEmptyOutput = errors.New("aggregated output has zero area")
)
