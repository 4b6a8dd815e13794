// Package numfmt renders numbers in the plain textual forms estimate authors
// see echoed back in reports.
package numfmt

import (
	"math"
	"strconv"
	"strings"
)

// Float returns the shortest string that round-trips f. Integral values keep
// a trailing ".0" and magnitudes outside [1e-4, 1e16) use exponent notation.
func Float(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Group inserts thousands separators into the integer part of a plain
// decimal string such as "-12345.678". Anything that is not a plain decimal
// (exponent forms, words) is returned unchanged.
func Group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, hasFrac := strings.Cut(s, ".")
	if intPart == "" || strings.Trim(intPart, "0123456789") != "" {
		return sign + s
	}
	if hasFrac && strings.Trim(frac, "0123456789") != "" {
		return sign + s
	}

	var b strings.Builder
	b.WriteString(sign)
	head := len(intPart) % 3
	if head > 0 {
		b.WriteString(intPart[:head])
	}
	for i := head; i < len(intPart); i += 3 {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
