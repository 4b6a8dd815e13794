// Package formula evaluates the small arithmetic formulas estimate authors
// embed in free text as EXP[ ... ]EXP and substitutes their results.
//
// Formulas are parsed with the expr-lang parser but interpreted here over a
// closed grammar: numeric literals, + - * / % ^ **, parentheses, the scalar
// sqFt, math.<name> constants and functions from a Library, and the bare
// built-ins abs, round, min, max, int and float. Every other construct is
// rejected, so a formula can never reach host functions, imports or I/O.
package formula

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// ScalarName is the identifier bound to the scalar context.
const ScalarName = "sqFt"

// libraryName prefixes Library members inside formulas.
const libraryName = "math"

var (
	ErrSyntax         = errors.New("formula: syntax error")
	ErrUnsupported    = errors.New("formula: unsupported construct")
	ErrUnknownName    = errors.New("formula: unknown name")
	ErrArity          = errors.New("formula: wrong number of arguments")
	ErrDivisionByZero = errors.New("formula: division by zero")
	ErrDomain         = errors.New("formula: math domain error")
	ErrOverflow       = errors.New("formula: numeric overflow")
)

// Env is everything a formula can see.
type Env struct {
	Scalar Number
	// Math defaults to StandardLibrary when nil.
	Math *Library
}

func (env Env) library() *Library {
	if env.Math == nil {
		return &StandardLibrary
	}
	return env.Math
}

// Eval parses and evaluates src against env.
func Eval(src string, env Env) (Number, error) {
	if strings.Contains(src, "//") || strings.Contains(src, "/*") {
		return Number{}, fmt.Errorf("%w: comments and floor division", ErrUnsupported)
	}

	tree, err := parser.Parse(src)
	if err != nil {
		return Number{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	e := evaluator{env: env, lib: env.library()}
	n, err := e.eval(tree.Node)
	if err != nil {
		return Number{}, err
	}
	if !n.isInt {
		return checkFinite(n.f)
	}
	return n, nil
}

type evaluator struct {
	env Env
	lib *Library
}

func (e *evaluator) eval(node ast.Node) (Number, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return Int(int64(n.Value)), nil
	case *ast.FloatNode:
		return Float(n.Value), nil
	case *ast.IdentifierNode:
		if n.Value == ScalarName {
			return e.env.Scalar, nil
		}
		return Number{}, fmt.Errorf("%w: %s", ErrUnknownName, n.Value)
	case *ast.UnaryNode:
		x, err := e.eval(n.Node)
		if err != nil {
			return Number{}, err
		}
		switch n.Operator {
		case "-":
			return negate(x), nil
		case "+":
			return x, nil
		}
		return Number{}, fmt.Errorf("%w: operator %q", ErrUnsupported, n.Operator)
	case *ast.BinaryNode:
		l, err := e.eval(n.Left)
		if err != nil {
			return Number{}, err
		}
		r, err := e.eval(n.Right)
		if err != nil {
			return Number{}, err
		}
		return binary(n.Operator, l, r)
	case *ast.MemberNode:
		name, err := libraryMember(n)
		if err != nil {
			return Number{}, err
		}
		c, ok := e.lib.Constants[name]
		if !ok {
			return Number{}, fmt.Errorf("%w: %s.%s", ErrUnknownName, libraryName, name)
		}
		return Float(c), nil
	case *ast.CallNode:
		fn, err := e.callee(n.Callee)
		if err != nil {
			return Number{}, err
		}
		return e.call(fn, n.Arguments)
	case *ast.BuiltinNode:
		fn, ok := builtins[n.Name]
		if !ok {
			return Number{}, fmt.Errorf("%w: %s", ErrUnknownName, n.Name)
		}
		return e.call(fn, n.Arguments)
	}
	return Number{}, fmt.Errorf("%w: %T", ErrUnsupported, node)
}

func (e *evaluator) callee(node ast.Node) (Func, error) {
	switch c := node.(type) {
	case *ast.IdentifierNode:
		if fn, ok := builtins[c.Value]; ok {
			return fn, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownName, c.Value)
	case *ast.MemberNode:
		name, err := libraryMember(c)
		if err != nil {
			return nil, err
		}
		if fn, ok := e.lib.Functions[name]; ok {
			return fn, nil
		}
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownName, libraryName, name)
	}
	return nil, fmt.Errorf("%w: call of %T", ErrUnsupported, node)
}

func (e *evaluator) call(fn Func, argNodes []ast.Node) (Number, error) {
	args := make([]Number, 0, len(argNodes))
	for _, a := range argNodes {
		v, err := e.eval(a)
		if err != nil {
			return Number{}, err
		}
		args = append(args, v)
	}
	v, err := fn(args)
	if err != nil {
		return Number{}, err
	}
	if !v.isInt && math.IsInf(v.f, 0) {
		return Number{}, ErrOverflow
	}
	return v, nil
}

// libraryMember returns name for a "math.name" access and rejects member
// access on anything else.
func libraryMember(n *ast.MemberNode) (string, error) {
	owner, ok := n.Node.(*ast.IdentifierNode)
	if !ok || owner.Value != libraryName || n.Optional {
		return "", fmt.Errorf("%w: member access", ErrUnsupported)
	}
	prop, ok := n.Property.(*ast.StringNode)
	if !ok {
		return "", fmt.Errorf("%w: computed member access", ErrUnsupported)
	}
	return prop.Value, nil
}
