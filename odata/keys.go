package odata

const (
	nameCount   = "count"
	nameFilter  = "filter"
	nameFormat  = "format"
	nameOrderBy = "orderby"
	nameSelect  = "select"
	nameSkip    = "skip"
	nameTop     = "top"
)

// Keys are the query parameter names used for one decoding mode.
type Keys struct {
	Select  string
	Count   string
	Filter  string
	Format  string
	OrderBy string
	Skip    string
	Top     string
}

func ResolveKeys(withDollar bool) Keys {
	key := func(name string) string {
		if withDollar {
			return "$" + name
		}

		return name
	}

	return Keys{
		Select:  key(nameSelect),
		Count:   key(nameCount),
		Filter:  key(nameFilter),
		Format:  key(nameFormat),
		OrderBy: key(nameOrderBy),
		Skip:    key(nameSkip),
		Top:     key(nameTop),
	}
}
