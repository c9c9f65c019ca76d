package listview

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Expr is a parsed AIP-160 filter expression bound to a schema.
type Expr struct {
	e *expr.Expr
}

// ParseExpr parses an AIP-160 filter such as `status = "available" AND coy = "A"`
// using the schema's fields as identifiers. An empty string yields a nil Expr
// that matches everything.
func ParseExpr[T any](s *Schema[T], filter string) (*Expr, error) {
	if strings.TrimSpace(filter) == "" {
		return nil, nil
	}

	decls, err := declarations(s)
	if err != nil {
		return nil, err
	}

	f, err := filtering.ParseFilterString(filter, decls)
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	return &Expr{e: f.CheckedExpr.Expr}, nil
}

func declarations[T any](s *Schema[T]) (*filtering.Declarations, error) {
	opts := []filtering.DeclarationOption{
		filtering.DeclareStandardFunctions(),
		// Juxtaposed terms (`coy = "A" quantity = 3`) are an implicit AND.
		filtering.DeclareFunction(filtering.FunctionFuzzyAnd,
			filtering.NewFunctionOverload(filtering.FunctionFuzzyAnd+"_bool", filtering.TypeBool, filtering.TypeBool, filtering.TypeBool)),
		filtering.DeclareIdent("true", filtering.TypeBool),
		filtering.DeclareIdent("false", filtering.TypeBool),
	}
	for _, name := range s.Keys() {
		switch s.Fields[name] {
		case Exact, Contains, Date:
			opts = append(opts, filtering.DeclareIdent(name, filtering.TypeString))
		case Int:
			opts = append(opts, filtering.DeclareIdent(name, filtering.TypeInt))
		case Bool:
			opts = append(opts, filtering.DeclareIdent(name, filtering.TypeBool))
		}
	}
	return filtering.NewDeclarations(opts...)
}

// MatchExpr evaluates x against rec. A nil x matches.
func MatchExpr[T any](s *Schema[T], x *Expr, rec T) (bool, error) {
	if x == nil || x.e == nil {
		return true, nil
	}
	return evaluate(x.e, func(name string) (any, bool) {
		if _, ok := s.Fields[name]; !ok {
			return nil, false
		}
		return exprValue(s.Value(rec, name)), true
	})
}

// ApplyExpr returns the records matching x.
func ApplyExpr[T any](s *Schema[T], x *Expr, recs []T) ([]T, error) {
	if x == nil {
		return recs, nil
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		ok, err := MatchExpr(s, x, rec)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// exprValue converts a record value into a type the evaluator compares.
func exprValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.In(time.Local).Format(time.DateOnly)
	case int:
		return int64(x)
	}
	return v
}

type resolver func(name string) (any, bool)

func evaluate(e *expr.Expr, resolve resolver) (bool, error) {
	if ident, ok := e.ExprKind.(*expr.Expr_IdentExpr); ok {
		// A bare bool field, as in `isIssued AND coy = "A"`.
		v, err := identValue(ident.IdentExpr.Name, resolve)
		if err != nil {
			return false, err
		}
		b, ok := v.(bool)
		if !ok {
			return false, fmt.Errorf("%s is not a bool field", ident.IdentExpr.Name)
		}
		return b, nil
	}
	call, ok := e.ExprKind.(*expr.Expr_CallExpr)
	if !ok {
		return false, fmt.Errorf("unsupported expression type: %T", e.ExprKind)
	}
	c := call.CallExpr

	switch c.Function {
	case "_&&_", "AND", "FUZZY":
		if len(c.Args) != 2 {
			return false, fmt.Errorf("AND requires 2 arguments")
		}
		left, err := evaluate(c.Args[0], resolve)
		if err != nil || !left {
			return false, err
		}
		return evaluate(c.Args[1], resolve)
	case "_||_", "OR":
		if len(c.Args) != 2 {
			return false, fmt.Errorf("OR requires 2 arguments")
		}
		left, err := evaluate(c.Args[0], resolve)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return evaluate(c.Args[1], resolve)
	case "NOT", "-":
		if len(c.Args) != 1 {
			return false, fmt.Errorf("NOT requires 1 argument")
		}
		v, err := evaluate(c.Args[0], resolve)
		return !v, err
	case "=", "!=", "<", "<=", ">", ">=", ":":
		return evalCompare(c.Function, c.Args, resolve)
	}
	return false, fmt.Errorf("unsupported function: %s", c.Function)
}

func evalCompare(fn string, args []*expr.Expr, resolve resolver) (bool, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("comparison requires 2 arguments")
	}
	ident, ok := args[0].ExprKind.(*expr.Expr_IdentExpr)
	if !ok {
		return false, fmt.Errorf("expected identifier, got %T", args[0].ExprKind)
	}
	left, err := identValue(ident.IdentExpr.Name, resolve)
	if err != nil {
		return false, err
	}
	var right any
	switch arg := args[1].ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		right, err = constValue(arg.ConstExpr)
	case *expr.Expr_IdentExpr:
		right, err = identValue(arg.IdentExpr.Name, resolve)
	default:
		err = fmt.Errorf("expected constant, got %T", args[1].ExprKind)
	}
	if err != nil {
		return false, err
	}

	if fn == ":" {
		l, lok := left.(string)
		r, rok := right.(string)
		if !lok || !rok {
			return false, fmt.Errorf("has operator requires string operands")
		}
		return strings.Contains(fold(l), fold(r)), nil
	}

	c, err := compareConst(left, right)
	if err != nil {
		return false, err
	}
	switch fn {
	case "=":
		return c == 0, nil
	case "!=":
		return c != 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

// identValue resolves a field name or the bool literals true and false.
func identValue(name string, resolve resolver) (any, error) {
	switch name {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	v, ok := resolve(name)
	if !ok {
		return nil, fmt.Errorf("unknown field: %s", name)
	}
	return v, nil
}

func constValue(c *expr.Constant) (any, error) {
	switch k := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return k.StringValue, nil
	case *expr.Constant_Int64Value:
		return k.Int64Value, nil
	case *expr.Constant_BoolValue:
		return k.BoolValue, nil
	}
	return nil, fmt.Errorf("unsupported constant type: %T", c.ConstantKind)
}

func compareConst(left, right any) (int, error) {
	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		if !ok {
			return 0, fmt.Errorf("type mismatch: string vs %T", right)
		}
		return strings.Compare(l, r), nil
	case int64:
		r, ok := right.(int64)
		if !ok {
			return 0, fmt.Errorf("type mismatch: int vs %T", right)
		}
		switch {
		case l < r:
			return -1, nil
		case l > r:
			return 1, nil
		}
		return 0, nil
	case bool:
		r, ok := right.(bool)
		if !ok {
			return 0, fmt.Errorf("type mismatch: bool vs %T", right)
		}
		return compareBools(l, r), nil
	}
	return 0, fmt.Errorf("unsupported value type: %T", left)
}
