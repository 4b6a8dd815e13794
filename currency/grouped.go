package currency

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/abaevpavel/pdfer-base/pkg/numfmt"
)

// Grouped formats a category total with thousands separators and no symbol:
// 12345 becomes "12,345" and 12345.5 becomes "12,345.5". A missing total is
// "0"; text that is not a number is returned as is.
func Grouped(v any) string {
	switch val := v.(type) {
	case nil:
		return "0"
	case bool:
		if val {
			return "1"
		}
		return "0"
	case json.Number:
		return groupLiteral(val.String())
	case string:
		return groupLiteral(strings.TrimSpace(val))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numfmt.Group(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return numfmt.Group(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		return numfmt.Group(numfmt.Float(rv.Float()))
	}
	return fmt.Sprint(v)
}

// groupLiteral groups a JSON number literal. Integer literals are grouped
// digit for digit so large values keep their precision.
func groupLiteral(s string) string {
	if isIntegerLiteral(s) {
		return numfmt.Group(s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return numfmt.Group(numfmt.Float(f))
}

func isIntegerLiteral(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	return digits != "" && strings.Trim(digits, "0123456789") == ""
}
