package transforms

import (
	"math"
	"math/cmplx"

	"qtermtape/ops"
	"qtermtape/qmath"
)

// degenerateTol decides when one half of the SU(2) matrix is treated as
// zero while converting back to Euler angles.
const degenerateTol = 1e-12

// FindNextGate returns the index in list of the first operation whose wires
// intersect wires, or -1 when no operation does.
func FindNextGate(wires ops.Wires, list []ops.Operation) int {
	for i, op := range list {
		if wires.Intersects(op.Wires()) {
			return i
		}
	}
	return -1
}

// FuseRotAngles returns the angles of the single rotation equivalent, up to a
// global phase, to applying Rot(first...) and then Rot(second...).
//
// Rot(phi, theta, omega) = RZ(omega) RY(theta) RZ(phi) is written as the
// SU(2) matrix [[a, -conj(b)], [b, conj(a)]] with
//
//	a = exp(-i(phi+omega)/2) cos(theta/2)
//	b = exp(-i(phi-omega)/2) sin(theta/2)
//
// The product U(second) U(first) is formed in that representation and
// converted back. When theta is 0 or pi only the sum or difference of phi
// and omega is defined; the whole phase then goes into phi. phi and omega
// are wrapped into [-pi, pi], which changes the matrix by at most a sign,
// so a product that is the identity up to phase comes back as all zeros.
func FuseRotAngles(first, second qmath.Vector) (qmath.Vector, error) {
	if _, err := qmath.CastLike(first, qmath.Zeros(3)); err != nil {
		return nil, err
	}
	if _, err := qmath.CastLike(second, qmath.Zeros(3)); err != nil {
		return nil, err
	}

	a1, b1 := su2(first)
	a2, b2 := su2(second)

	a := a2*a1 - cmplx.Conj(b2)*b1
	b := b2*a1 + cmplx.Conj(a2)*b1

	absA, absB := cmplx.Abs(a), cmplx.Abs(b)
	theta := 2 * math.Atan2(absB, absA)

	var phi, omega float64
	switch {
	case absB < degenerateTol:
		phi = -2 * cmplx.Phase(a)
	case absA < degenerateTol:
		phi = -2 * cmplx.Phase(b)
	default:
		argA, argB := cmplx.Phase(a), cmplx.Phase(b)
		phi = -argA - argB
		omega = -argA + argB
	}

	fused := qmath.Stack(wrapAngle(phi), theta, wrapAngle(omega))
	if err := qmath.RequireFinite(fused); err != nil {
		return nil, err
	}
	return fused, nil
}

// su2 returns the (a, b) pair of Rot(angles).
func su2(angles qmath.Vector) (complex128, complex128) {
	phi, theta, omega := angles[0], angles[1], angles[2]
	a := cmplx.Exp(complex(0, -(phi+omega)/2)) * complex(math.Cos(theta/2), 0)
	b := cmplx.Exp(complex(0, -(phi-omega)/2)) * complex(math.Sin(theta/2), 0)
	return a, b
}

func wrapAngle(x float64) float64 {
	return math.Remainder(x, 2*math.Pi)
}
