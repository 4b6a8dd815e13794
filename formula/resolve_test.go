package formula

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWithoutMarkersIsIdentity(t *testing.T) {
	inputs := []string{
		"",
		"Install tile over the whole floor",
		"EXP[ opened but never closed",
		"closed but never opened ]EXP",
		"brackets [like] these stay",
	}

	for _, in := range inputs {
		assert.Equal(t, in, Resolve(in, Env{Scalar: Int(100)}))
	}
}

func TestResolve(t *testing.T) {
	env := Env{Scalar: Int(100)}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single formula", "Install EXP[sqFt*2]EXP tiles", "Install 200 tiles"},
		{"float result", "Boxes: EXP[sqFt/8]EXP", "Boxes: 12.5"},
		{"math library", "Sheets: EXP[math.ceil(sqFt/32)]EXP", "Sheets: 4"},
		{"repeated formula", "EXP[2*3]EXP + EXP[2*3]EXP", "6 + 6"},
		{"two formulas", "EXP[1+1]EXP and EXP[sqFt-1]EXP", "2 and 99"},
		{"division by zero passes through", "Area: EXP[1/0]EXP sq ft", "Area: 1/0 sq ft"},
		{"unknown name passes through", "EXP[width*2]EXP ft", "width*2 ft"},
		{"formula cannot span lines", "EXP[1+\n1]EXP", "1+\n1"},
		{"stray markers are stripped", "EXP[1+1]EXP and ]EXP", "2 and "},
		{"empty formula", "a EXP[]EXP b", "a  b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.in, env)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, openMarker)
			assert.NotContains(t, got, closeMarker)
		})
	}
}

func TestResolveSubstitutesByTextInFormulaOrder(t *testing.T) {
	// The first result replaces "sqFt" everywhere, so the second formula's
	// text no longer occurs by the time it is substituted.
	got := Resolve("EXP[sqFt]EXP and EXP[sqFt/4]EXP", Env{Scalar: Int(100)})
	assert.Equal(t, "100 and 100/4", got)
}

func TestResolverCollectsFailures(t *testing.T) {
	r := Resolver{Env: Env{Scalar: Int(10)}}

	got := r.Resolve("EXP[1/0]EXP, EXP[sqFt]EXP, EXP[nope]EXP")
	assert.Equal(t, "1/0, 10, nope", got)

	require.Len(t, r.Failures, 2)
	assert.Equal(t, "1/0", r.Failures[0].Expr)
	assert.ErrorIs(t, r.Failures[0].Err, ErrDivisionByZero)
	assert.Equal(t, "nope", r.Failures[1].Expr)
	assert.ErrorIs(t, r.Failures[1].Err, ErrUnknownName)
}

func TestResolverCustomPolicy(t *testing.T) {
	r := Resolver{
		Env: Env{Scalar: Int(10)},
		OnEvalError: func(expr string, err error) string {
			if errors.Is(err, ErrDivisionByZero) {
				return "n/a"
			}
			return expr
		},
	}

	assert.Equal(t, "ratio n/a", r.Resolve("ratio EXP[sqFt/0]EXP"))
}

func TestPassthroughIsDefaultPolicy(t *testing.T) {
	assert.Equal(t, "1/0", Passthrough("1/0", ErrDivisionByZero))
	assert.Equal(t, "1/0", OnEvalError("1/0", ErrDivisionByZero))
}
