package odata

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Operand is the right hand side of a filter clause. It is one of Integer,
// Float, Text or List.
type Operand interface {
	isOperand()
	literal() string
}

type Integer int64

type Float float64

type Text string

// List is only produced for the "in" operator and never nests.
type List []Operand

func (Integer) isOperand() {}
func (Float) isOperand()   {}
func (Text) isOperand()    {}
func (List) isOperand()    {}

func (operand Integer) literal() string {
	return strconv.FormatInt(int64(operand), 10)
}

func (operand Float) literal() string {
	return strconv.FormatFloat(float64(operand), 'g', -1, 64)
}

func (operand Text) literal() string {
	return "'" + strings.ReplaceAll(string(operand), "'", "''") + "'"
}

func (operand List) literal() string {
	elements := make([]string, 0, len(operand))
	for _, element := range operand {
		elements = append(elements, element.literal())
	}

	return "(" + strings.Join(elements, ",") + ")"
}

var numericLiteral = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

func coerceOperand(operator Operator, raw string) Operand {
	if operator == In {
		return coerceList(raw)
	}

	return coerceScalar(raw)
}

func coerceScalar(raw string) Operand {
	trimmed := strings.TrimSpace(raw)

	if numericLiteral.MatchString(trimmed) {
		if integer, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return Integer(integer)
		}

		if number, err := strconv.ParseFloat(trimmed, 64); err == nil {
			// math.MinInt64 is exactly representable, its negation is the exclusive upper bound
			if number == math.Trunc(number) && number >= math.MinInt64 && number < -math.MinInt64 {
				return Integer(int64(number))
			}

			return Float(number)
		}
	}

	return Text(unquote(trimmed))
}

func coerceList(raw string) List {
	interior := strings.TrimSpace(raw)
	interior = strings.TrimPrefix(interior, "(")
	interior = strings.TrimSuffix(interior, ")")

	list := List{}
	if strings.TrimSpace(interior) == "" {
		return list
	}

	for _, element := range splitOutsideQuotes(interior, ',') {
		list = append(list, coerceScalar(element))
	}

	return list
}

func unquote(text string) string {
	if len(text) < 2 || text[0] != '\'' || text[len(text)-1] != '\'' {
		return text
	}

	return strings.ReplaceAll(text[1:len(text)-1], "''", "'")
}

func splitOutsideQuotes(text string, separator byte) []string {
	if parts, balanced := splitSeparated(text, separator, true); balanced {
		return parts
	}

	parts, _ := splitSeparated(text, separator, false)

	return parts
}

func splitSeparated(text string, separator byte, respectQuotes bool) ([]string, bool) {
	parts := []string{}
	start := 0
	quoted := false

	for i := 0; i < len(text); i++ {
		switch {
		case respectQuotes && text[i] == '\'':
			switch {
			case quoted && i+1 < len(text) && text[i+1] == '\'':
				i++
			case quoted:
				quoted = false
			case opensLiteral(text, i):
				quoted = true
			}
		case text[i] == separator && !quoted:
			parts = append(parts, text[start:i])
			start = i + 1
		}
	}

	return append(parts, text[start:]), !quoted
}
