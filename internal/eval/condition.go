package eval

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// condOperators are checked longest-first at each scan position so "==*"
// is never mistaken for a prefix match of "==". The order here is by
// length only: findCondOperator picks the leftmost operator in the
// expression, so operators have no precedence among themselves.
var condOperators = []string{
	"==*", "!!*", "==-", "!!-",
	"=~", "!~", "=*", "!*", "=-", "!-",
	"==", "!=", "<=", ">=", "<", ">",
}

// evalCondition evaluates s as a boolean condition expression: comparisons
// combined with && (binds tighter) and || over parenthesized groups.
func (e *Evaluator) evalCondition(s string, ctx *Context) (bool, error) {
	return e.condOr(strings.TrimSpace(s), ctx)
}

func (e *Evaluator) condOr(s string, ctx *Context) (bool, error) {
	parts := splitTopLevel(s, "||")
	if len(parts) == 1 {
		return e.condAnd(s, ctx)
	}
	for _, p := range parts {
		v, err := e.condAnd(p, ctx)
		if err != nil {
			return false, err
		}
		if v {
			return true, nil
		}
	}
	return false, nil
}

func (e *Evaluator) condAnd(s string, ctx *Context) (bool, error) {
	parts := splitTopLevel(s, "&&")
	if len(parts) == 1 {
		return e.condAtom(s, ctx)
	}
	for _, p := range parts {
		v, err := e.condAtom(p, ctx)
		if err != nil {
			return false, err
		}
		if !v {
			return false, nil
		}
	}
	return true, nil
}

func (e *Evaluator) condAtom(s string, ctx *Context) (bool, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && isWrappingParen(s) {
		return e.condOr(s[1:len(s)-1], ctx)
	}

	if op, idx := findCondOperator(s); op != "" {
		left := strings.TrimSpace(s[:idx])
		right := strings.TrimSpace(s[idx+len(op):])
		lv, err := e.evaluate(left, ctx)
		if err != nil {
			return false, err
		}
		rv, err := e.evaluate(right, ctx)
		if err != nil {
			return false, err
		}
		return applyCondOperator(op, lv, rv), nil
	}

	v, err := e.evaluate(s, ctx)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

func truthy(v string) bool {
	return v != "" && v != "0" && v != "false"
}

func applyCondOperator(op, left, right string) bool {
	switch op {
	case "=~":
		ok, _ := regexp.MatchString(right, left)
		return ok
	case "!~":
		ok, _ := regexp.MatchString(right, left)
		return !ok
	case "==*":
		ok, _ := filepath.Match(right, strings.ToLower(left))
		ok2, _ := filepath.Match(strings.ToLower(right), strings.ToLower(left))
		return ok || ok2
	case "!!*":
		ok, _ := filepath.Match(strings.ToLower(right), strings.ToLower(left))
		return !ok
	case "=*":
		ok, _ := filepath.Match(right, left)
		return ok
	case "!*":
		ok, _ := filepath.Match(right, left)
		return !ok
	case "==-":
		return strings.Contains(strings.ToLower(left), strings.ToLower(right))
	case "!!-":
		return !strings.Contains(strings.ToLower(left), strings.ToLower(right))
	case "=-":
		return strings.Contains(left, right)
	case "!-":
		return !strings.Contains(left, right)
	case "==":
		return left == right
	case "!=":
		return left != right
	case "<=", "<", ">=", ">":
		return numericOrStringCompare(op, left, right)
	}
	return false
}

func numericOrStringCompare(op, left, right string) bool {
	lf, lerr := strconv.ParseFloat(left, 64)
	rf, rerr := strconv.ParseFloat(right, 64)
	var cmp int
	if lerr == nil && rerr == nil {
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		default:
			cmp = 0
		}
	} else {
		cmp = strings.Compare(left, right)
	}
	switch op {
	case "<=":
		return cmp <= 0
	case "<":
		return cmp < 0
	case ">=":
		return cmp >= 0
	case ">":
		return cmp > 0
	}
	return false
}

// findCondOperator returns the first top-level (outside parens) occurrence
// of any condition operator, scanning left to right and preferring the
// longest operator match at each position.
func findCondOperator(s string) (op string, idx int) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
			continue
		case ')':
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		for _, candidate := range condOperators {
			if strings.HasPrefix(s[i:], candidate) {
				return candidate, i
			}
		}
	}
	return "", -1
}

// splitTopLevel splits s on sep wherever sep appears outside parentheses.
func splitTopLevel(s, sep string) []string {
	depth := 0
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		default:
			if depth == 0 && strings.HasPrefix(s[i:], sep) {
				parts = append(parts, s[start:i])
				start = i + len(sep)
				i += len(sep) - 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func isWrappingParen(s string) bool {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}
