package odata

type Operator string

const (
	Equal          Operator = "equal"
	NotEqual       Operator = "notEqual"
	GreaterThan    Operator = "greaterThan"
	GreaterOrEqual Operator = "greaterOrEqual"
	LowerThan      Operator = "lowerThan"
	LowerOrEqual   Operator = "lowerOrEqual"
	In             Operator = "in"
)

var operatorTokens = map[string]Operator{
	"eq": Equal,
	"ne": NotEqual,
	"gt": GreaterThan,
	"ge": GreaterOrEqual,
	"lt": LowerThan,
	"le": LowerOrEqual,
	"in": In,
}

// ParseOperator maps an OData comparison token such as "eq" to its Operator.
// Tokens are case sensitive.
func ParseOperator(token string) (Operator, bool) {
	operator, found := operatorTokens[token]

	return operator, found
}

// Token is the inverse of ParseOperator.
func (operator Operator) Token() string {
	switch operator {
	case Equal:
		return "eq"
	case NotEqual:
		return "ne"
	case GreaterThan:
		return "gt"
	case GreaterOrEqual:
		return "ge"
	case LowerThan:
		return "lt"
	case LowerOrEqual:
		return "le"
	case In:
		return "in"
	}

	return ""
}

func (operator Operator) Valid() bool {
	return operator.Token() != ""
}
