package formula

import (
	"regexp"
	"strings"
)

const (
	openMarker  = "EXP["
	closeMarker = "]EXP"
)

var markerPattern = regexp.MustCompile(`EXP\[(.*?)\]EXP`)

// FailurePolicy chooses the text that replaces a formula that failed to
// evaluate.
type FailurePolicy func(expr string, err error) string

// Passthrough leaves the formula text itself in place of a result.
func Passthrough(expr string, _ error) string { return expr }

// OnEvalError is the policy used when a Resolver does not set one.
var OnEvalError FailurePolicy = Passthrough

// EvalFailure records a formula that could not be evaluated.
type EvalFailure struct {
	Expr string
	Err  error
}

// Resolver substitutes EXP[ ... ]EXP formulas in text. The zero value
// resolves against a zero scalar with the standard library.
type Resolver struct {
	Env         Env
	OnEvalError FailurePolicy

	// Failures accumulates every formula that fell back to OnEvalError.
	Failures []EvalFailure
}

// Resolve returns text with every marker removed and every formula replaced
// by its result.
//
// Markers are stripped first; each formula is then replaced by text wherever
// it occurs in the stripped string, in the order the formulas appear. A
// result that happens to contain a later formula's text is substituted again.
func (r *Resolver) Resolve(text string) string {
	if !strings.Contains(text, openMarker) || !strings.Contains(text, closeMarker) {
		return text
	}

	matches := markerPattern.FindAllStringSubmatch(text, -1)
	out := strings.ReplaceAll(text, openMarker, "")
	out = strings.ReplaceAll(out, closeMarker, "")

	for _, m := range matches {
		expr := m[1]
		out = strings.ReplaceAll(out, expr, r.evaluate(expr))
	}
	return out
}

func (r *Resolver) evaluate(expr string) string {
	n, err := Eval(expr, r.Env)
	if err == nil {
		return n.String()
	}

	r.Failures = append(r.Failures, EvalFailure{Expr: expr, Err: err})
	policy := r.OnEvalError
	if policy == nil {
		policy = OnEvalError
	}
	return policy(expr, err)
}

// Resolve substitutes formulas in text using env and the default policy.
func Resolve(text string, env Env) string {
	r := Resolver{Env: env}
	return r.Resolve(text)
}
