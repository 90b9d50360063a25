// Package qmath holds the numeric helpers used by circuit transforms.
//
// All values share one representation, Vector, a plain float64 slice.
// Helpers that combine two vectors report a length mismatch as an error
// rather than broadcasting.
package qmath

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Default tolerances, matching numpy's allclose.
const (
	DefaultRtol = 1e-5
	DefaultAtol = 1e-8
)

var (
	// ErrLengthMismatch is returned when two vectors must have equal length.
	ErrLengthMismatch = errors.New("qmath: length mismatch")
	// ErrNotFinite is returned when a vector holds NaN or ±Inf.
	ErrNotFinite = errors.New("qmath: non-finite value")
)

// Vector is the canonical numeric array.
type Vector []float64

// Len returns the number of elements.
func (v Vector) Len() int { return len(v) }

// Clone returns a copy of v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Stack collects scalar values into a single vector.
func Stack(values ...float64) Vector {
	out := make(Vector, len(values))
	copy(out, values)
	return out
}

// Zeros returns a vector of n zeros.
func Zeros(n int) Vector {
	if n < 0 {
		n = 0
	}
	return make(Vector, n)
}

// CastLike returns a copy of v in the representation of like.
// There is only one representation, so this reduces to a shape check.
func CastLike(v, like Vector) (Vector, error) {
	if len(v) != len(like) {
		return nil, fmt.Errorf("cast %d values like %d: %w", len(v), len(like), ErrLengthMismatch)
	}
	return v.Clone(), nil
}

// AllEqual reports whether a and b hold exactly the same values.
func AllEqual(a, b Vector) bool {
	return floats.Equal(a, b)
}

// AllClose reports whether |a[i]-b[i]| <= atol + rtol*|b[i]| for every i.
// NaN is never close to anything.
func AllClose(a, b Vector, rtol, atol float64) (bool, error) {
	if len(a) != len(b) {
		return false, fmt.Errorf("allclose %d vs %d values: %w", len(a), len(b), ErrLengthMismatch)
	}
	for i := range a {
		if !(math.Abs(a[i]-b[i]) <= atol+rtol*math.Abs(b[i])) {
			return false, nil
		}
	}
	return true, nil
}

// RequireFinite returns ErrNotFinite if v holds NaN or an infinity.
func RequireFinite(v Vector) error {
	if floats.HasNaN(v) {
		return fmt.Errorf("%v: %w", v, ErrNotFinite)
	}
	for _, x := range v {
		if math.IsInf(x, 0) {
			return fmt.Errorf("%v: %w", v, ErrNotFinite)
		}
	}
	return nil
}
