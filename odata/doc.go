// Package odata decodes OData style query strings ($select, $count, $top,
// $skip, $orderby and $filter) into a Query. It never executes anything; see
// odataservices/database for turning a Query into SQL.
//
// Filters are a conjunction of "<property> <op> <value>" clauses where op is
// one of eq, ne, gt, ge, lt, le or in:
//
//	query, err := odata.Decode("$filter=city in ('Paris', 'Malaga') and age gt 20&$top=10")
package odata
