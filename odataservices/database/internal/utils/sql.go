package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

var (
	parameterFinder = regexp.MustCompile(`:\w+`)
	spaceFinder     = regexp.MustCompile(`\s+`)
)

// Prepare swaps ":name" parameters for driver placeholders ("?" or "$1") and
// returns the arguments in placeholder order. Slice values expand to one
// placeholder per element for use in IN lists.
func Prepare(statement string, parameters map[string]any, numberedParams bool) (string, []any, error) {
	statement = strings.TrimSpace(spaceFinder.ReplaceAllString(statement, " "))

	args := []any{}
	counter := 0
	paramBuilder := func() string {
		counter++
		if !numberedParams {
			return "?"
		}

		return fmt.Sprintf("$%d", counter)
	}

	newStatement := parameterFinder.ReplaceAllStringFunc(statement, func(s string) string {
		parameterValue, found := parameters[s]
		if !found {
			return s
		}

		valueOf := reflect.ValueOf(parameterValue)
		if parameterValue != nil && valueOf.Kind() == reflect.Slice && valueOf.Type().Elem().Kind() != reflect.Uint8 {
			localArgs := []string{}
			for i := range valueOf.Len() {
				localArgs = append(localArgs, paramBuilder())
				args = append(args, valueOf.Index(i).Interface())
			}

			return strings.Join(localArgs, ", ")
		}

		args = append(args, parameterValue)

		return paramBuilder()
	})

	return newStatement, args, nil
}
