package odata

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type DecoderConfigFunc func(config *decoderConfig)

type decoderConfig struct {
	withDollar bool
}

// WithDollar selects between "$top" style keys (the default) and bare "top"
// style keys.
func WithDollar(enabled bool) DecoderConfigFunc {
	return func(config *decoderConfig) {
		config.withDollar = enabled
	}
}

func WithoutDollar() DecoderConfigFunc {
	return WithDollar(false)
}

func newDecoderConfig(configFuncs []DecoderConfigFunc) decoderConfig {
	config := decoderConfig{
		withDollar: true,
	}

	for _, configFunc := range configFuncs {
		configFunc(&config)
	}

	return config
}

// Decode parses the query component of a URL, without the leading "?".
func Decode(queryString string, configFuncs ...DecoderConfigFunc) (Query, error) {
	values, err := url.ParseQuery(queryString)
	if err != nil {
		return Query{}, &DecodeError{
			Value: queryString,
			Err:   fmt.Errorf("%w: %w", ErrInvalidQueryString, err),
		}
	}

	return DecodeValues(values, configFuncs...)
}

// DecodeURL extracts the query of an absolute URL and decodes it.
func DecodeURL(rawURL string, configFuncs ...DecoderConfigFunc) (Query, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Query{}, &DecodeError{Value: rawURL, Err: ErrInvalidURL}
	}

	return Decode(parsed.RawQuery, configFuncs...)
}

func DecodeValues(values url.Values, configFuncs ...DecoderConfigFunc) (Query, error) {
	config := newDecoderConfig(configFuncs)

	return decoder{
		keys:   ResolveKeys(config.withDollar),
		values: values,
	}.decode()
}

type decoder struct {
	keys   Keys
	values url.Values
}

// lookup returns the last value given for key, matching form decoding where a
// repeated name overwrites the previous one.
func (d decoder) lookup(key string) (string, bool) {
	values := d.values[key]
	if len(values) == 0 {
		return "", false
	}

	return values[len(values)-1], true
}

func (d decoder) decode() (Query, error) {
	query := Query{}

	if raw, found := d.lookup(d.keys.Select); found && strings.TrimSpace(raw) != "" {
		query.Select = decodeSelect(raw)
	}

	if raw, found := d.lookup(d.keys.Count); found {
		query.Count = decodeCount(raw)
	}

	if raw, found := d.lookup(d.keys.Top); found {
		top, err := decodeBound(nameTop, raw)
		if err != nil {
			return Query{}, err
		}
		query.Top = &top
	}

	if raw, found := d.lookup(d.keys.Skip); found {
		skip, err := decodeBound(nameSkip, raw)
		if err != nil {
			return Query{}, err
		}
		query.Skip = &skip
	}

	if raw, found := d.lookup(d.keys.OrderBy); found && strings.TrimSpace(raw) != "" {
		orderBy, err := decodeOrderBy(raw)
		if err != nil {
			return Query{}, err
		}
		query.OrderBy = orderBy
	}

	if raw, found := d.lookup(d.keys.Filter); found && strings.TrimSpace(raw) != "" {
		filter, err := decodeFilter(raw)
		if err != nil {
			return Query{}, err
		}
		query.Filter = filter
	}

	return query, nil
}

func decodeSelect(raw string) []string {
	columns := []string{}
	for _, column := range strings.Split(raw, ",") {
		columns = append(columns, strings.TrimSpace(column))
	}

	return columns
}

func decodeCount(raw string) bool {
	trimmed := strings.TrimSpace(raw)

	return trimmed != "" && trimmed != "0"
}

func decodeBound(name string, raw string) (uint64, error) {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "-") {
		value, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, &DecodeError{Parameter: name, Value: raw, Err: ErrNotAnInteger}
		}

		if value < 0 {
			return 0, &DecodeError{Parameter: name, Value: raw, Err: ErrNegativeValue}
		}

		// "-0"
		return 0, nil
	}

	value, err := strconv.ParseUint(strings.TrimPrefix(trimmed, "+"), 10, 64)
	if err != nil {
		return 0, &DecodeError{Parameter: name, Value: raw, Err: ErrNotAnInteger}
	}

	return value, nil
}

func decodeOrderBy(raw string) ([]OrderBy, error) {
	orderBy := []OrderBy{}

	for _, item := range strings.Split(raw, ",") {
		fields := strings.Fields(item)
		if len(fields) == 0 {
			return nil, &DecodeError{Parameter: nameOrderBy, Value: item, Err: ErrMalformedOrderBy}
		}

		direction := Ascending
		if len(fields) > 1 {
			direction = Direction(fields[1])
		}

		if !direction.Valid() {
			return nil, &DecodeError{Parameter: nameOrderBy, Value: fields[1], Err: ErrInvalidDirection}
		}

		orderBy = append(orderBy, OrderBy{
			Property:  fields[0],
			Direction: direction,
		})
	}

	return orderBy, nil
}

func decodeFilter(raw string) ([]Clause, error) {
	clauses := []Clause{}

	for _, segment := range splitConjunction(raw) {
		clause, err := ParseClause(segment)
		if err != nil {
			return nil, err
		}

		clauses = append(clauses, clause)
	}

	return clauses, nil
}
