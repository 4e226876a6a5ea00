package commands

import (
	"fmt"
	"strconv"
	"strings"
)

// Type converts a raw token into a typed argument value.
type Type interface {
	// Name is used in error messages, e.g. "int".
	Name() string
	Convert(raw string) (any, error)
}

// TypeFunc adapts a plain function into a Type.
type TypeFunc struct {
	TypeName string
	Fn       func(raw string) (any, error)
}

func (t TypeFunc) Name() string                     { return t.TypeName }
func (t TypeFunc) Convert(raw string) (any, error) { return t.Fn(raw) }

// Built-in argument types.
var (
	String Type = TypeFunc{TypeName: "str", Fn: func(raw string) (any, error) {
		return raw, nil
	}}
	Int Type = TypeFunc{TypeName: "int", Fn: func(raw string) (any, error) {
		return strconv.Atoi(strings.TrimSpace(raw))
	}}
	Float Type = TypeFunc{TypeName: "float", Fn: func(raw string) (any, error) {
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	}}
	Bool Type = TypeFunc{TypeName: "bool", Fn: func(raw string) (any, error) {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "1", "true", "yes", "y", "on":
			return true, nil
		case "0", "false", "no", "n", "off":
			return false, nil
		}
		return nil, fmt.Errorf("invalid boolean %q", raw)
	}}
)

// Param is one entry of a command's declared parameter shape.
type Param struct {
	Name     string
	Type     Type // nil passes the raw token through
	Variadic bool // captures every remaining token
	Optional bool // may be left without a token
}

// Arg declares a required untyped parameter.
func Arg(name string) Param { return Param{Name: name} }

// TypedArg declares a required typed parameter.
func TypedArg(name string, t Type) Param { return Param{Name: name, Type: t} }

// OptionalArg declares a parameter that may be omitted.
func OptionalArg(name string, t Type) Param { return Param{Name: name, Type: t, Optional: true} }

// Rest declares a variadic parameter. It must be last.
func Rest(name string) Param { return Param{Name: name, Variadic: true} }

// Convert maps raw tokens onto params[skip:]. A variadic param captures the
// remaining tokens verbatim and ends conversion. Otherwise the result is at
// most min(len(params)-skip, len(raw)) long; missing trailing values are
// left to the caller to judge.
func Convert(params []Param, skip int, raw []string) (Args, error) {
	if skip < 0 {
		skip = 0
	}
	if skip > len(params) {
		skip = len(params)
	}
	params = params[skip:]

	out := make(Args, 0, min(len(params), len(raw)))
	for i, p := range params {
		if i >= len(raw) {
			break
		}
		if p.Variadic {
			for _, tok := range raw[i:] {
				out = append(out, tok)
			}
			break
		}
		if p.Type == nil {
			out = append(out, raw[i])
			continue
		}
		v, err := p.Type.Convert(raw[i])
		if err != nil {
			return nil, &BadArgumentError{Param: p.Name, Type: p.Type.Name(), Value: raw[i]}
		}
		out = append(out, v)
	}
	return out, nil
}

// Args holds converted argument values in declaration order. The accessors
// return the zero value for positions that were not supplied.
type Args []any

// Len returns the number of supplied values.
func (a Args) Len() int { return len(a) }

// Has reports whether position i was supplied.
func (a Args) Has(i int) bool { return i >= 0 && i < len(a) }

func (a Args) String(i int) string {
	if !a.Has(i) {
		return ""
	}
	if s, ok := a[i].(string); ok {
		return s
	}
	return fmt.Sprint(a[i])
}

func (a Args) Int(i int) int {
	if !a.Has(i) {
		return 0
	}
	n, _ := a[i].(int)
	return n
}

func (a Args) Float(i int) float64 {
	if !a.Has(i) {
		return 0
	}
	f, _ := a[i].(float64)
	return f
}

func (a Args) Bool(i int) bool {
	if !a.Has(i) {
		return false
	}
	b, _ := a[i].(bool)
	return b
}

// Strings renders every value from position i onward.
func (a Args) Strings(from int) []string {
	if from < 0 {
		from = 0
	}
	if from >= len(a) {
		return []string{}
	}
	out := make([]string, 0, len(a)-from)
	for i := from; i < len(a); i++ {
		out = append(out, a.String(i))
	}
	return out
}

// Join renders every value from position i onward separated by spaces.
func (a Args) Join(from int) string {
	return strings.Join(a.Strings(from), " ")
}

func requiredParams(params []Param) int {
	n := 0
	for _, p := range params {
		if p.Variadic || p.Optional {
			break
		}
		n++
	}
	return n
}
