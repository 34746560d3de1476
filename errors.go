package rmi

import "errors"

// Sentinel errors for the fatal error kinds of spec.md §7. Each is
// reported at the facade call; wrap with github.com/pkg/errors for
// call-site context and unwrap with errors.Is.
var (
	// ErrBadSpec is returned when a RootOnly primitive appears below
	// layer 0, a LeafOnly primitive appears above the last layer, or
	// the spec names an unknown primitive.
	ErrBadSpec = errors.New("rmi: bad model spec")

	// ErrUnsupportedKind is returned when TrainBounded is invoked on
	// data whose KeyType is not U64.
	ErrUnsupportedKind = errors.New("rmi: unsupported key kind")

	// ErrNoConfigFits is returned when TrainForSize finds no
	// Pareto-efficient configuration under the requested size budget.
	ErrNoConfigFits = errors.New("rmi: no configuration fits the size budget")

	// ErrEmptyData is returned when training is attempted over a
	// zero-length data set.
	ErrEmptyData = errors.New("rmi: training data is empty")
)
