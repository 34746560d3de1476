package rmi

import (
	"github.com/pkg/errors"
)

// newModel trains the named model primitive over data, automatically
// promoting to the extended-precision "big" variant when the caller
// names it directly or when shouldUseBigPrecision's heuristics fire
// (spec.md §4.1). Unknown names are reported as ErrBadSpec. validate
// (below) does not call newModel; it checks names against the static
// primitiveRestrictions table instead.
func newModel(name string, data *TrainingData) (Model, error) {
	switch name {
	case "linear":
		if shouldUseBigPrecision(data) {
			return NewLinearModelBig(data), nil
		}
		return NewLinearModel(data), nil
	case "linear_big":
		return NewLinearModelBig(data), nil
	case "robust_linear":
		return NewRobustLinearModel(data), nil
	case "linear_spline":
		return NewLinearSplineModel(data), nil
	case "cubic":
		return NewCubicModel(data), nil
	case "pwl":
		return NewPiecewiseLinearModel(data, 28), nil
	case "pwl30":
		return NewPiecewiseLinearModel(data, 30), nil
	case "normal":
		return NewNormalModel(data), nil
	case "lognormal":
		return NewLognormalModel(data), nil
	case "loglinear":
		return NewLogLinearModel(data), nil
	case "radix":
		return NewRadixModel(data), nil
	case "radix18":
		return NewRadix18Model(data), nil
	case "radix22":
		return NewRadix22Model(data), nil
	default:
		return nil, errors.Wrapf(ErrBadSpec, "unknown primitive %q", name)
	}
}

// primitiveRestrictions is Restriction per primitive name, independent
// of any trained data. Keeping this static (rather than training a
// throwaway model just to read its Restriction()) means validate
// never trips a NumericDegenerate fallback, and the logs it produces
// stay limited to real training runs.
var primitiveRestrictions = map[string]Restriction{
	"linear":        Unrestricted,
	"linear_big":    Unrestricted,
	"robust_linear": Unrestricted,
	"linear_spline": LeafOnly,
	"cubic":         Unrestricted,
	"pwl":           Unrestricted,
	"pwl30":         Unrestricted,
	"normal":        Unrestricted,
	"lognormal":     Unrestricted,
	"loglinear":     Unrestricted,
	"radix":         RootOnly,
	"radix18":       RootOnly,
	"radix22":       RootOnly,
}

// modelRestriction reports the Restriction a model primitive name
// would carry, without training anything. Used by validate.
func modelRestriction(name string, kind KeyType) (Restriction, error) {
	_ = kind // restriction does not currently vary by key kind
	restriction, known := primitiveRestrictions[name]
	if !known {
		return Unrestricted, errors.Wrapf(ErrBadSpec, "unknown primitive %q", name)
	}
	return restriction, nil
}

// validate asserts that every RootOnly primitive in modelSpec appears
// only at index 0 and every LeafOnly primitive appears only at the
// last index, per spec.md §4.2. Must be called before training
// begins; a bad spec fails fast rather than partway through a (slow)
// training run.
func validate(modelSpec []string, kind KeyType) error {
	last := len(modelSpec) - 1
	for idx, name := range modelSpec {
		restriction, err := modelRestriction(name, kind)
		if err != nil {
			return err
		}
		switch restriction {
		case RootOnly:
			if idx != 0 {
				return errors.Wrapf(ErrBadSpec, "model %q is root-only but appears at layer %d", name, idx)
			}
		case LeafOnly:
			if idx != last {
				return errors.Wrapf(ErrBadSpec, "model %q is leaf-only but appears at layer %d of %d", name, idx, last+1)
			}
		}
	}
	return nil
}

// parseModelSpec splits a comma-separated spec string ("radix,linear")
// into its ordered primitive names and validates it in one step.
func parseModelSpec(spec string, kind KeyType) ([]string, error) {
	names, err := splitSpec(spec)
	if err != nil {
		return nil, err
	}
	if err := validate(names, kind); err != nil {
		return nil, err
	}
	return names, nil
}

func splitSpec(spec string) ([]string, error) {
	if spec == "" {
		return nil, errors.Wrap(ErrBadSpec, "empty model spec")
	}
	var names []string
	start := 0
	for i := 0; i <= len(spec); i++ {
		if i == len(spec) || spec[i] == ',' {
			if i == start {
				return nil, errors.Wrap(ErrBadSpec, "empty model name in spec")
			}
			names = append(names, spec[start:i])
			start = i + 1
		}
	}
	return names, nil
}

// joinModelSpec is the inverse of splitSpec, used to round-trip the
// spec string stored on a TrainedRMI (spec.md §8 property 8).
func joinModelSpec(names []string) string {
	s := ""
	for i, n := range names {
		if i > 0 {
			s += ","
		}
		s += n
	}
	return s
}
