package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lunagic/odata/odata"
	"github.com/spf13/cobra"
)

func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	var noDollar bool

	cmd := &cobra.Command{
		Use:   "decode <query-string-or-url>",
		Short: "Decode an OData query string and print the result",
		Long: `Decode the OData parameters of a query string ("$top=5&$filter=age gt 20")
or of an absolute URL and print the decoded query.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := decodeArgument(args[0], odata.WithDollar(!noDollar))
			if err != nil {
				return err
			}

			return writeQuery(cmd.OutOrStdout(), rootOpts.Format, query)
		},
	}

	cmd.Flags().BoolVar(&noDollar, "no-dollar", false, "parameters are named without the leading $")

	return cmd
}

func decodeArgument(argument string, configFuncs ...odata.DecoderConfigFunc) (odata.Query, error) {
	if strings.Contains(argument, "://") {
		return odata.DecodeURL(argument, configFuncs...)
	}

	return odata.Decode(strings.TrimPrefix(argument, "?"), configFuncs...)
}

func writeQuery(w io.Writer, format string, query odata.Query) error {
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(query)
	}

	lines := []string{}
	if len(query.Select) > 0 {
		lines = append(lines, "select: "+strings.Join(query.Select, ", "))
	}

	if query.Count {
		lines = append(lines, "count: true")
	}

	if query.Top != nil {
		lines = append(lines, "top: "+strconv.FormatUint(*query.Top, 10))
	}

	if query.Skip != nil {
		lines = append(lines, "skip: "+strconv.FormatUint(*query.Skip, 10))
	}

	for _, orderBy := range query.OrderBy {
		lines = append(lines, fmt.Sprintf("orderby: %s %s", orderBy.Property, orderBy.Direction))
	}

	for _, clause := range query.Filter {
		lines = append(lines, fmt.Sprintf("filter: %s (%s)", clause, clause.Operator))
	}

	if len(lines) == 0 {
		lines = append(lines, "empty query")
	}

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))

	return err
}
