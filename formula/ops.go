package formula

import (
	"fmt"
	"math"
)

// Integers beyond this magnitude continue as floats rather than wrap.
const intLimit = 1 << 62

func intOrFloat(exact int64, approx float64) Number {
	if math.Abs(approx) >= intLimit {
		return Float(approx)
	}
	return Int(exact)
}

func negate(x Number) Number {
	if x.isInt {
		return intOrFloat(-x.i, -x.f)
	}
	return Float(-x.f)
}

func binary(op string, l, r Number) (Number, error) {
	switch op {
	case "+":
		if l.isInt && r.isInt {
			return intOrFloat(l.i+r.i, l.f+r.f), nil
		}
		return Float(l.Float64() + r.Float64()), nil
	case "-":
		if l.isInt && r.isInt {
			return intOrFloat(l.i-r.i, l.f-r.f), nil
		}
		return Float(l.Float64() - r.Float64()), nil
	case "*":
		if l.isInt && r.isInt {
			return intOrFloat(l.i*r.i, l.f*r.f), nil
		}
		return Float(l.Float64() * r.Float64()), nil
	case "/":
		if r.isZero() {
			return Number{}, ErrDivisionByZero
		}
		return Float(l.Float64() / r.Float64()), nil
	case "%":
		return modulo(l, r)
	case "^", "**":
		return power(l, r)
	}
	return Number{}, fmt.Errorf("%w: operator %q", ErrUnsupported, op)
}

// modulo takes the sign of the divisor.
func modulo(l, r Number) (Number, error) {
	if r.isZero() {
		return Number{}, ErrDivisionByZero
	}
	if l.isInt && r.isInt {
		m := l.i % r.i
		if m != 0 && (m < 0) != (r.i < 0) {
			m += r.i
		}
		return Int(m), nil
	}
	a, b := l.Float64(), r.Float64()
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return Float(m), nil
}

func power(base, exp Number) (Number, error) {
	if base.isZero() && exp.Float64() < 0 {
		return Number{}, ErrDivisionByZero
	}
	if base.isInt && exp.isInt && exp.i >= 0 {
		approx := math.Pow(base.f, exp.f)
		if math.Abs(approx) >= intLimit {
			return Float(approx), nil
		}
		result := int64(1)
		for n, b := exp.i, base.i; n > 0; n >>= 1 {
			if n&1 == 1 {
				result *= b
			}
			b *= b
		}
		return Int(result), nil
	}
	b, e := base.Float64(), exp.Float64()
	if b < 0 && e != math.Trunc(e) {
		return Number{}, fmt.Errorf("%w: fractional power of a negative number", ErrDomain)
	}
	return Float(math.Pow(b, e)), nil
}
