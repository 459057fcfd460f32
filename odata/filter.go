package odata

import (
	"fmt"
	"regexp"
	"strings"
)

type Clause struct {
	Left     string   `json:"left"`
	Operator Operator `json:"operator"`
	Right    Operand  `json:"right"`
}

// String renders the clause back into $filter syntax.
func (clause Clause) String() string {
	right := ""
	if clause.Right != nil {
		right = clause.Right.literal()
	}

	return strings.TrimSpace(fmt.Sprintf("%s %s %s", clause.Left, clause.Operator.Token(), right))
}

var clausePattern = regexp.MustCompile(`(?s)^\s*(\w+)\s+(eq|ne|gt|ge|lt|le|in)\b\s*(\S.*?)\s*$`)

// ParseClause parses a single conjunct of a $filter value, for example
// "age gt 20" or "city in ('Paris', 'Malaga')".
func ParseClause(segment string) (Clause, error) {
	matches := clausePattern.FindStringSubmatch(segment)
	if matches == nil {
		return Clause{}, &DecodeError{Parameter: nameFilter, Value: segment, Err: ErrMalformedFilterClause}
	}

	operator, found := ParseOperator(matches[2])
	if !found {
		return Clause{}, &DecodeError{Parameter: nameFilter, Value: segment, Err: ErrMalformedFilterClause}
	}

	return Clause{
		Left:     matches[1],
		Operator: operator,
		Right:    coerceOperand(operator, matches[3]),
	}, nil
}

const conjunction = "and"

// splitConjunction splits on "and" only when it stands alone between
// whitespace and outside of a quoted literal. A quote that is never closed
// does not protect anything.
func splitConjunction(filter string) []string {
	if segments, balanced := splitConjunctionQuoted(filter, true); balanced {
		return segments
	}

	segments, _ := splitConjunctionQuoted(filter, false)

	return segments
}

func splitConjunctionQuoted(filter string, respectQuotes bool) ([]string, bool) {
	segments := []string{}
	start := 0
	quoted := false

	for i := 0; i < len(filter); i++ {
		if respectQuotes && filter[i] == '\'' {
			switch {
			case quoted && i+1 < len(filter) && filter[i+1] == '\'':
				i++
			case quoted:
				quoted = false
			case opensLiteral(filter, i):
				quoted = true
			}
			continue
		}

		if quoted || !isConjunctionAt(filter, i) {
			continue
		}

		segments = append(segments, filter[start:i])
		start = i + len(conjunction)
		i = start - 1
	}

	return append(segments, filter[start:]), !quoted
}

// opensLiteral reports whether the quote at i starts an operand, as opposed
// to an apostrophe inside a bare word such as O'Brien.
func opensLiteral(text string, i int) bool {
	return i == 0 || isSpace(text[i-1]) || text[i-1] == '(' || text[i-1] == ','
}

func isConjunctionAt(filter string, i int) bool {
	if !strings.HasPrefix(filter[i:], conjunction) {
		return false
	}

	end := i + len(conjunction)

	return i > 0 && isSpace(filter[i-1]) && end < len(filter) && isSpace(filter[end])
}

func isSpace(b byte) bool {
	return strings.IndexByte(" \t\n\r\f\v", b) >= 0
}
