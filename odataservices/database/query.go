package database

type statement struct {
	Query      string
	Parameters map[string]any
}

type Order struct {
	Column     string
	Descending bool
}

// Limit.Count is nil when only an offset was requested.
type Limit struct {
	Count  *uint64
	Offset uint64
}

type Query struct {
	Select  []string
	From    string
	Where   OperatorOfLogic
	OrderBy []Order
	Limit   *Limit
}

// Row is a single result row keyed by column name.
type Row = map[string]any
