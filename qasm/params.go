package qasm

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// piExprRegex matches expressions like: pi, 2pi, 2*pi, pi/2, 3pi/4, 3*pi/4, -pi, -pi/2, -3*pi/4
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

// piDenominators are tried in order when formatting, so fractions come out
// reduced.
var piDenominators = []int{1, 2, 3, 4, 6, 8, 16, 32, 64}

// piTol is how close a value must be to k*pi/d to be printed that way.
const piTol = 1e-10

// ParseParam parses a gate parameter: a plain number or a pi expression.
//
// Supported formats:
//   - Plain numbers: "1.5707", "3.14", "-0.5", "1e-3"
//   - Pi constant: "pi"
//   - Pi fractions: "pi/2", "pi/4", "pi/3"
//   - Coefficients: "2pi", "2*pi", "3pi/4", "3*pi/4"
//   - Negative: "-pi", "-pi/2", "-3*pi/4"
func ParseParam(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty parameter: %w", ErrSyntax)
	}

	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return val, nil
	}

	matches := piExprRegex.FindStringSubmatch(strings.ToLower(s))
	if matches == nil {
		return 0, fmt.Errorf("parameter %q: %w", s, ErrSyntax)
	}

	coeff := 1.0
	if matches[2] != "" {
		var err error
		if coeff, err = strconv.ParseFloat(matches[2], 64); err != nil {
			return 0, fmt.Errorf("parameter %q: %w", s, ErrSyntax)
		}
	}
	result := coeff * math.Pi

	if matches[3] != "" {
		denom, err := strconv.ParseFloat(matches[3], 64)
		if err != nil || denom == 0 {
			return 0, fmt.Errorf("parameter %q: %w", s, ErrSyntax)
		}
		result /= denom
	}

	if matches[1] == "-" {
		result = -result
	}
	return result, nil
}

// FormatParam formats a parameter, using pi notation for small multiples of
// pi/d and the shortest exact decimal otherwise.
func FormatParam(val float64) string {
	if val == 0 {
		return "0"
	}
	for _, d := range piDenominators {
		k := math.Round(val * float64(d) / math.Pi)
		if k == 0 || math.Abs(k) > float64(4*d) {
			continue
		}
		if math.Abs(val-k*math.Pi/float64(d)) >= piTol {
			continue
		}
		return formatPiFraction(int(k), d)
	}
	return strconv.FormatFloat(val, 'g', -1, 64)
}

func formatPiFraction(k, d int) string {
	var sb strings.Builder
	if k < 0 {
		sb.WriteByte('-')
		k = -k
	}
	if k != 1 {
		fmt.Fprintf(&sb, "%d*", k)
	}
	sb.WriteString("pi")
	if d != 1 {
		fmt.Fprintf(&sb, "/%d", d)
	}
	return sb.String()
}
