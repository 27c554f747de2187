package errors

import "math"

// ValidateFinite rejects NaN and infinite values.
// name identifies the parameter in the returned message.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidArgument, "%s must be finite, got %v", name, v)
	}
	return nil
}

// ValidatePositive rejects values that are not finite and strictly positive.
//
// This is the check used for segment lengths and radii: a zero segment
// length would make edge bisection loop forever, and a zero radius
// collapses a pseudo-circle to a point.
func ValidatePositive(name string, v float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return New(ErrCodeInvalidArgument, "%s must be positive, got %v", name, v)
	}
	return nil
}

// ValidateNonNegative rejects values that are not finite or below zero.
func ValidateNonNegative(name string, v float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v < 0 {
		return New(ErrCodeInvalidArgument, "%s must not be negative, got %v", name, v)
	}
	return nil
}

// ValidateFraction rejects values outside [0, 1].
func ValidateFraction(name string, v float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v < 0 || v > 1 {
		return New(ErrCodeInvalidArgument, "%s must be within [0, 1], got %v", name, v)
	}
	return nil
}
