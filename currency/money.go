// Package currency formats amounts for estimate reports.
package currency

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/abaevpavel/pdfer-base/pkg/numfmt"
)

// Symbol prefixes every formatted amount.
const Symbol = "$"

var numberLike = regexp.MustCompile(`^[0-9][0-9,]*(\.[0-9]+)?$`)

// Money formats v as "$12,345.00". Numbers and strings that hold a single
// amount are rounded half to even to cents; nil becomes "" and any other
// value is returned as text. Money never fails.
func Money(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		return format(boolAmount(val))
	case decimal.Decimal:
		return format(val)
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return Symbol + val.String()
		}
		return format(d)
	case string:
		if d, ok := ParseAmount(val); ok {
			return format(d)
		}
		return val
	}

	if d, raw, ok := numeric(v); ok {
		return format(d)
	} else if raw != "" {
		return Symbol + raw
	}
	return fmt.Sprint(v)
}

// ParseAmount reads a string holding exactly one amount, such as
// "$ 1,234.50" or "1234". Full-width digits are accepted. At most one
// currency symbol may appear.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(norm.NFKC.String(s))
	if strings.Count(s, Symbol) > 1 {
		return decimal.Decimal{}, false
	}
	s = strings.ReplaceAll(s, Symbol, "")
	s = strings.ReplaceAll(s, " ", "")
	if !numberLike.MatchString(s) {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func format(d decimal.Decimal) string {
	return Symbol + numfmt.Group(d.StringFixedBank(2))
}

// numeric converts Go numeric kinds. raw is set for values that are numeric
// but cannot be represented, such as NaN.
func numeric(v any) (d decimal.Decimal, raw string, ok bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), "", true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		d, err := decimal.NewFromString(strconv.FormatUint(rv.Uint(), 10))
		return d, "", err == nil
	case reflect.Float32:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Decimal{}, numfmt.Float(f), false
		}
		return decimal.NewFromFloat32(float32(f)), "", true
	case reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Decimal{}, numfmt.Float(f), false
		}
		return decimal.NewFromFloat(f), "", true
	}
	return decimal.Decimal{}, "", false
}

// boolAmount counts true as one and false as zero.
func boolAmount(b bool) decimal.Decimal {
	if b {
		return decimal.NewFromInt(1)
	}
	return decimal.Zero
}
