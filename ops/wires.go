package ops

import (
	"fmt"
	"slices"
	"strings"
)

// Wires is an ordered set of wire (qubit) indices.
type Wires []int

// Equal reports whether w and o hold the same wires in the same order.
func (w Wires) Equal(o Wires) bool {
	return slices.Equal(w, o)
}

// Intersects reports whether w and o share at least one wire.
// An empty set intersects nothing.
func (w Wires) Intersects(o Wires) bool {
	for _, x := range w {
		if o.Contains(x) {
			return true
		}
	}
	return false
}

// Contains reports whether wire x is in w.
func (w Wires) Contains(x int) bool {
	return slices.Contains(w, x)
}

// Max returns the largest wire index, or -1 for an empty set.
func (w Wires) Max() int {
	if len(w) == 0 {
		return -1
	}
	return slices.Max(w)
}

// Min returns the smallest wire index, or -1 for an empty set.
func (w Wires) Min() int {
	if len(w) == 0 {
		return -1
	}
	return slices.Min(w)
}

// Clone returns a copy of w.
func (w Wires) Clone() Wires {
	return slices.Clone(w)
}

// Unique reports whether no wire appears twice.
func (w Wires) Unique() bool {
	seen := make(map[int]bool, len(w))
	for _, x := range w {
		if seen[x] {
			return false
		}
		seen[x] = true
	}
	return true
}

func (w Wires) String() string {
	parts := make([]string, len(w))
	for i, x := range w {
		parts[i] = fmt.Sprintf("%d", x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
