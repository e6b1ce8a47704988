package data

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// AVU is an attribute-value-unit metadata triple. Unit is optional.
// Several triples may share the same attribute.
type AVU struct {
	Attribute string `json:"attribute" yaml:"attribute"`
	Value     string `json:"value" yaml:"value"`
	Unit      string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// NewAVU is a shorthand for building a triple; at most one unit is used.
func NewAVU(attribute, value string, unit ...string) AVU {
	avu := AVU{Attribute: attribute, Value: value}
	if len(unit) > 0 {
		avu.Unit = unit[0]
	}
	return avu
}

func (a AVU) String() string {
	if a.Unit == "" {
		return fmt.Sprintf("(%s, %s)", a.Attribute, a.Value)
	}
	return fmt.Sprintf("(%s, %s, %s)", a.Attribute, a.Value, a.Unit)
}

// Field returns the value of the given part of the triple.
func (a AVU) Field(field Field) string {
	switch field {
	case FieldAttribute:
		return a.Attribute
	case FieldValue:
		return a.Value
	case FieldUnit:
		return a.Unit
	default:
		return ""
	}
}

// MatchesAll reports whether this triple satisfies every criterion.
func (a AVU) MatchesAll(criteria []Criterion) bool {
	for _, criterion := range criteria {
		if !criterion.Match(a) {
			return false
		}
	}
	return true
}

// Field selects which part of a triple a criterion is tested against.
type Field string

const (
	FieldAttribute Field = "attribute"
	FieldValue     Field = "value"
	FieldUnit      Field = "unit"
)

// Operator is the comparison used by a criterion.
type Operator string

const (
	OpEqual    Operator = "="
	OpNotEqual Operator = "!="
	OpLike     Operator = "like"
	OpNotLike  Operator = "not like"
	OpLess     Operator = "<"
	OpGreater  Operator = ">"
)

// ParseOperator accepts the operator spellings used on the command line.
func ParseOperator(op string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(op)) {
	case "=", "==", "eq":
		return OpEqual, nil
	case "!=", "<>", "ne":
		return OpNotEqual, nil
	case "like":
		return OpLike, nil
	case "not like", "notlike", "not_like":
		return OpNotLike, nil
	case "<", "lt":
		return OpLess, nil
	case ">", "gt":
		return OpGreater, nil
	default:
		return "", errors.Errorf("%w: unknown operator '%s'", ErrInvalid, op)
	}
}

// Criterion filters metadata during a search. It never mutates state.
type Criterion struct {
	Field    Field    `json:"field"`
	Operator Operator `json:"operator"`
	Pattern  string   `json:"pattern"`
}

// NewCriterion builds a single criterion.
func NewCriterion(field Field, op Operator, pattern string) Criterion {
	return Criterion{Field: field, Operator: op, Pattern: pattern}
}

// AttributeIs returns the criteria matching a triple with the given
// attribute whose value compares to pattern using op.
func AttributeIs(attribute string, op Operator, pattern string) []Criterion {
	return []Criterion{
		NewCriterion(FieldAttribute, OpEqual, attribute),
		NewCriterion(FieldValue, op, pattern),
	}
}

// Match tests one triple against this criterion.
func (c Criterion) Match(avu AVU) bool {
	value := avu.Field(c.Field)
	switch c.Operator {
	case OpEqual:
		return value == c.Pattern
	case OpNotEqual:
		return value != c.Pattern
	case OpLike:
		return Like(value, c.Pattern)
	case OpNotLike:
		return !Like(value, c.Pattern)
	case OpLess:
		return value < c.Pattern
	case OpGreater:
		return value > c.Pattern
	default:
		return false
	}
}

func (c Criterion) String() string {
	return fmt.Sprintf("%s %s '%s'", c.Field, c.Operator, c.Pattern)
}

// Like implements case-sensitive SQL LIKE matching: '%' matches any run of
// characters, '_' exactly one, and '\' escapes the next character.
func Like(value, pattern string) bool {
	v, p := []rune(value), []rune(pattern)
	vi, pi := 0, 0
	star, mark := -1, 0

	for vi < len(v) {
		if pi < len(p) {
			switch p[pi] {
			case '%':
				star, mark = pi, vi
				pi++
				continue
			case '_':
				vi++
				pi++
				continue
			case '\\':
				if pi+1 < len(p) && p[pi+1] == v[vi] {
					vi++
					pi += 2
					continue
				}
			default:
				if p[pi] == v[vi] {
					vi++
					pi++
					continue
				}
			}
		}

		if star < 0 {
			return false
		}
		mark++
		vi = mark
		pi = star + 1
	}

	for pi < len(p) && p[pi] == '%' {
		pi++
	}
	return pi == len(p)
}

// EscapeLike escapes LIKE wildcards so that s matches only itself.
func EscapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
