package formula

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/abaevpavel/pdfer-base/pkg/numfmt"
)

// Number is a formula value. It remembers whether it is an integer so that
// results print as authors expect: "6" for 2*3, "1.5" for 3/2, "2.0" for 4/2.
type Number struct {
	i     int64
	f     float64
	isInt bool
}

// Int returns an integer Number.
func Int(i int64) Number {
	return Number{i: i, f: float64(i), isInt: true}
}

// Float returns a floating-point Number.
func Float(f float64) Number {
	return Number{f: f}
}

// IsInt reports whether n holds an integer.
func (n Number) IsInt() bool { return n.isInt }

// Float64 returns n as a float64.
func (n Number) Float64() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

// String formats n the way it is substituted into text.
func (n Number) String() string {
	if n.isInt {
		return strconv.FormatInt(n.i, 10)
	}
	return numfmt.Float(n.f)
}

func (n Number) isZero() bool {
	if n.isInt {
		return n.i == 0
	}
	return n.f == 0
}

// NumberOf converts a decoded JSON scalar or Go numeric value into a Number.
// Numeric strings are parsed; anything else reports false.
func NumberOf(v any) (Number, bool) {
	switch val := v.(type) {
	case nil:
		return Number{}, false
	case Number:
		return val, true
	case json.Number:
		return parseNumber(val.String())
	case string:
		return parseNumber(strings.TrimSpace(val))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Float(float64(u)), true
		}
		return Int(int64(u)), true
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), true
	}
	return Number{}, false
}

func parseNumber(s string) (Number, bool) {
	if s == "" {
		return Number{}, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}, false
	}
	return Float(f), true
}
