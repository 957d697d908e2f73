package condition

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Resolver supplies field values during evaluation.
type Resolver interface {
	// Lookup returns the value stored for key and whether the key exists.
	Lookup(key string) (any, bool)
}

// absentValue marks a field key that is not present in the value map.
// It compares unequal to every literal, including the empty string, so
// rules can tell "never set" apart from "cleared".
type absentValue struct{}

func (absentValue) String() string { return "<absent>" }

// Absent is the distinguished value a missing field resolves to.
var Absent = absentValue{}

// Eval walks the AST and returns the predicate result. It never performs
// I/O; errors only arise from operand type mismatches.
func Eval(expr Expr, r Resolver) (bool, error) {
	switch e := expr.(type) {
	case *LogicExpr:
		left, err := Eval(e.Left, r)
		if err != nil {
			return false, err
		}
		if e.Op == "AND" {
			if !left {
				return false, nil
			}
			return Eval(e.Right, r)
		}
		if left {
			return true, nil
		}
		return Eval(e.Right, r)
	case *NotExpr:
		v, err := Eval(e.Expr, r)
		if err != nil {
			return false, err
		}
		return !v, nil
	case *CompareExpr:
		left := resolve(e.Left, r)
		right := resolve(e.Right, r)
		return compare(e.Op, left, right)
	case *FieldExpr:
		v, ok := r.Lookup(e.Key)
		if !ok {
			return false, nil
		}
		return truthy(v), nil
	}
	return false, fmt.Errorf("unknown expr node %T", expr)
}

func resolve(op Operand, r Resolver) any {
	switch o := op.(type) {
	case *Literal:
		return o.Value
	case *Field:
		v, ok := r.Lookup(o.Key)
		if !ok {
			return Absent
		}
		return v
	}
	return Absent
}

func compare(op Op, left, right any) (bool, error) {
	switch op {
	case OpEq:
		return equal(left, right), nil
	case OpNeq:
		return !equal(left, right), nil
	case OpGt, OpGte, OpLt, OpLte:
		return ordered(op, left, right)
	case OpContains:
		ls, ok := left.(string)
		if !ok {
			return false, nil // absent or non-string: no match
		}
		return strings.Contains(ls, fmt.Sprintf("%v", right)), nil
	case OpMatches:
		ls, lok := left.(string)
		pat, rok := right.(string)
		if !lok {
			return false, nil
		}
		if !rok {
			return false, fmt.Errorf("matches: pattern must be a string, got %T", right)
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return false, fmt.Errorf("matches: invalid pattern %q: %w", pat, err)
		}
		return re.MatchString(ls), nil
	}
	return false, fmt.Errorf("unknown operator %q", op)
}

// equal treats numeric values by magnitude and Absent as equal only to
// Absent itself.
func equal(left, right any) bool {
	_, la := left.(absentValue)
	_, ra := right.(absentValue)
	if la || ra {
		return la && ra
	}
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if lok && rok {
		return math.Abs(lf-rf) < 1e-9
	}
	if lb, ok := left.(bool); ok {
		if rb, ok := right.(bool); ok {
			return lb == rb
		}
		return false
	}
	return fmt.Sprintf("%v", left) == fmt.Sprintf("%v", right)
}

// ordered comparisons on absent values are false rather than an error:
// an unset threshold simply never passes a numeric gate.
func ordered(op Op, left, right any) (bool, error) {
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		if isAbsent(left) || isAbsent(right) {
			return false, nil
		}
		return false, fmt.Errorf("operator %s needs numeric operands, got %T and %T", op, left, right)
	}
	switch op {
	case OpGt:
		return lf > rf, nil
	case OpGte:
		return lf >= rf, nil
	case OpLt:
		return lf < rf, nil
	}
	return lf <= rf, nil
}

func isAbsent(v any) bool {
	_, ok := v.(absentValue)
	return ok
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "", "0", "false", "no", "off":
			return false
		}
		return true
	case int:
		return x != 0
	case float64:
		return x != 0
	}
	return v != nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
