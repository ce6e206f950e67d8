package graph

import "errors"

var (
	// ErrIncompatibleType marks a connection rejected because the slot types
	// cannot be reconciled. It is an expected outcome, not a bug.
	ErrIncompatibleType = errors.New("incompatible slot types")

	// ErrInvariant marks missing bookkeeping: an absent node, slot, link or
	// group entry that the caller expected to exist.
	ErrInvariant = errors.New("structural invariant violated")

	// ErrInvalidValue marks a widget value outside the widget's options.
	ErrInvalidValue = errors.New("invalid widget value")
)
