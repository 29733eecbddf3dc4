// Package condition implements the comparison and logic primitives used to
// classify symbolic state: operator-based value comparison, and composable
// property/feature/relationship/entity conditions.
package condition

import (
	"strconv"
	"strings"
)

// CompOp is a comparison operator applied to two string-encoded values.
type CompOp int

const (
	Equal CompOp = iota
	Different
	Greater
	GreaterOrEqual
	Less
	LessOrEqual
	// Defined is true when both operands are simultaneously empty or
	// simultaneously non-empty, regardless of their actual values.
	Defined
)

func (op CompOp) String() string {
	switch op {
	case Equal:
		return "=="
	case Different:
		return "!="
	case Greater:
		return ">"
	case GreaterOrEqual:
		return ">="
	case Less:
		return "<"
	case LessOrEqual:
		return "<="
	case Defined:
		return "defined"
	default:
		return "unknown"
	}
}

// ParseCompOp parses the string form produced by CompOp.String.
func ParseCompOp(s string) (CompOp, bool) {
	switch s {
	case "==", "":
		return Equal, true
	case "!=":
		return Different, true
	case ">":
		return Greater, true
	case ">=":
		return GreaterOrEqual, true
	case "<":
		return Less, true
	case "<=":
		return LessOrEqual, true
	case "defined":
		return Defined, true
	}
	return Equal, false
}

// canBeNumber reports whether s looks like the start of a numeric literal.
func canBeNumber(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return (c >= '0' && c <= '9') || c == '-'
}

// orderedCompare returns -1, 0 or 1 comparing a and b, preferring integer
// comparison, then floating point comparison, and falling back to
// lexicographic string comparison when either value does not parse as a
// number.
func orderedCompare(a, b string) int {
	if canBeNumber(a) && canBeNumber(b) {
		if ia, erra := strconv.ParseInt(a, 10, 64); erra == nil {
			if ib, errb := strconv.ParseInt(b, 10, 64); errb == nil {
				switch {
				case ia < ib:
					return -1
				case ia > ib:
					return 1
				default:
					return 0
				}
			}
		}
		if fa, erra := strconv.ParseFloat(a, 64); erra == nil {
			if fb, errb := strconv.ParseFloat(b, 64); errb == nil {
				switch {
				case fa < fb:
					return -1
				case fa > fb:
					return 1
				default:
					return 0
				}
			}
		}
	}
	return strings.Compare(a, b)
}

// Compare evaluates a op b over string-encoded scalars, coercing to integer
// or floating point comparison when both sides parse as numbers.
func Compare(a string, op CompOp, b string) bool {
	if op == Defined {
		return (a == "") == (b == "")
	}
	cmp := orderedCompare(a, b)
	switch op {
	case Equal:
		return cmp == 0
	case Different:
		return cmp != 0
	case Greater:
		return cmp > 0
	case GreaterOrEqual:
		return cmp >= 0
	case Less:
		return cmp < 0
	case LessOrEqual:
		return cmp <= 0
	}
	return false
}
