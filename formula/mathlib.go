package formula

import (
	"fmt"
	"math"
	"strconv"
)

// Func is a callable exposed to formulas.
type Func func(args []Number) (Number, error)

// Library is the set of names reachable through the "math." prefix.
type Library struct {
	Constants map[string]float64
	Functions map[string]Func
}

// StandardLibrary is the allow-listed math library formulas may call.
var StandardLibrary = Library{
	Constants: map[string]float64{
		"pi":  math.Pi,
		"e":   math.E,
		"tau": 2 * math.Pi,
	},
	Functions: map[string]Func{
		"ceil":    roundingFunc(math.Ceil),
		"floor":   roundingFunc(math.Floor),
		"trunc":   roundingFunc(math.Trunc),
		"sqrt":    floatFunc(math.Sqrt),
		"fabs":    floatFunc(math.Abs),
		"exp":     floatFunc(math.Exp),
		"log10":   floatFunc(math.Log10),
		"log2":    floatFunc(math.Log2),
		"sin":     floatFunc(math.Sin),
		"cos":     floatFunc(math.Cos),
		"tan":     floatFunc(math.Tan),
		"radians": floatFunc(func(x float64) float64 { return x * math.Pi / 180 }),
		"degrees": floatFunc(func(x float64) float64 { return x * 180 / math.Pi }),
		"log":     logFunc,
		"pow":     powFunc,
		"hypot":   hypotFunc,
	},
}

// builtins are callable without a prefix.
var builtins = map[string]Func{
	"abs":   absFunc,
	"round": roundFunc,
	"min":   extremumFunc(func(a, b float64) bool { return a < b }),
	"max":   extremumFunc(func(a, b float64) bool { return a > b }),
	"int":   roundingFunc(math.Trunc),
	"float": floatFunc(func(x float64) float64 { return x }),
}

func arity(args []Number, want int) error {
	if len(args) != want {
		return fmt.Errorf("%w: expected %d argument(s), got %d", ErrArity, want, len(args))
	}
	return nil
}

func checkFinite(f float64) (Number, error) {
	switch {
	case math.IsNaN(f):
		return Number{}, fmt.Errorf("%w: result is not a number", ErrDomain)
	case math.IsInf(f, 0):
		return Number{}, ErrOverflow
	}
	return Float(f), nil
}

func floatFunc(fn func(float64) float64) Func {
	return func(args []Number) (Number, error) {
		if err := arity(args, 1); err != nil {
			return Number{}, err
		}
		return checkFinite(fn(args[0].Float64()))
	}
}

func roundingFunc(fn func(float64) float64) Func {
	return func(args []Number) (Number, error) {
		if err := arity(args, 1); err != nil {
			return Number{}, err
		}
		if args[0].isInt {
			return args[0], nil
		}
		return toInt(fn(args[0].f))
	}
}

func toInt(f float64) (Number, error) {
	if math.IsNaN(f) {
		return Number{}, fmt.Errorf("%w: cannot convert nan to integer", ErrDomain)
	}
	if math.IsInf(f, 0) || math.Abs(f) >= intLimit {
		return Number{}, ErrOverflow
	}
	return Int(int64(f)), nil
}

func logFunc(args []Number) (Number, error) {
	if len(args) != 1 && len(args) != 2 {
		return Number{}, fmt.Errorf("%w: log takes 1 or 2 arguments, got %d", ErrArity, len(args))
	}
	x := args[0].Float64()
	if x <= 0 {
		return Number{}, fmt.Errorf("%w: log of non-positive number", ErrDomain)
	}
	if len(args) == 1 {
		return checkFinite(math.Log(x))
	}
	base := args[1].Float64()
	if base <= 0 {
		return Number{}, fmt.Errorf("%w: log base must be positive", ErrDomain)
	}
	if base == 1 {
		return Number{}, ErrDivisionByZero
	}
	return checkFinite(math.Log(x) / math.Log(base))
}

func powFunc(args []Number) (Number, error) {
	if err := arity(args, 2); err != nil {
		return Number{}, err
	}
	b, e := args[0].Float64(), args[1].Float64()
	if b == 0 && e < 0 {
		return Number{}, fmt.Errorf("%w: zero to a negative power", ErrDomain)
	}
	if b < 0 && e != math.Trunc(e) {
		return Number{}, fmt.Errorf("%w: fractional power of a negative number", ErrDomain)
	}
	return checkFinite(math.Pow(b, e))
}

func hypotFunc(args []Number) (Number, error) {
	if err := arity(args, 2); err != nil {
		return Number{}, err
	}
	return checkFinite(math.Hypot(args[0].Float64(), args[1].Float64()))
}

func absFunc(args []Number) (Number, error) {
	if err := arity(args, 1); err != nil {
		return Number{}, err
	}
	x := args[0]
	if x.isInt {
		if x.i < 0 {
			return negate(x), nil
		}
		return x, nil
	}
	return Float(math.Abs(x.f)), nil
}

// roundFunc rounds half to even. Without a digit count it returns an integer;
// with one the result keeps the argument's kind.
func roundFunc(args []Number) (Number, error) {
	if len(args) != 1 && len(args) != 2 {
		return Number{}, fmt.Errorf("%w: round takes 1 or 2 arguments, got %d", ErrArity, len(args))
	}
	x := args[0]
	if len(args) == 1 {
		if x.isInt {
			return x, nil
		}
		return toInt(math.RoundToEven(x.f))
	}

	nd := args[1]
	if !nd.isInt {
		return Number{}, fmt.Errorf("%w: round digits must be an integer", ErrDomain)
	}
	if x.isInt {
		if nd.i >= 0 {
			return x, nil
		}
		if nd.i < -18 {
			return Int(0), nil
		}
		scale := math.Pow(10, float64(-nd.i))
		return toInt(math.RoundToEven(float64(x.i)/scale) * scale)
	}
	if nd.i >= 0 {
		if nd.i > 308 {
			return x, nil
		}
		rounded, err := strconv.ParseFloat(strconv.FormatFloat(x.f, 'f', int(nd.i), 64), 64)
		if err != nil {
			return Number{}, fmt.Errorf("%w: %v", ErrDomain, err)
		}
		return Float(rounded), nil
	}
	scale := math.Pow(10, float64(-nd.i))
	return checkFinite(math.RoundToEven(x.f/scale) * scale)
}

func extremumFunc(better func(a, b float64) bool) Func {
	return func(args []Number) (Number, error) {
		if len(args) < 2 {
			return Number{}, fmt.Errorf("%w: expected at least 2 arguments, got %d", ErrArity, len(args))
		}
		best := args[0]
		for _, a := range args[1:] {
			if better(a.Float64(), best.Float64()) {
				best = a
			}
		}
		return best, nil
	}
}
