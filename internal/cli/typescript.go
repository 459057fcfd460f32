package cli

import (
	"reflect"

	"github.com/lunagic/odata/odata"
	"github.com/lunagic/odata/odataapp"
	"github.com/lunagic/odata/odataservices/database"
	"github.com/lunagic/odata/odatahttp"
	"github.com/spf13/cobra"
)

func NewTypeScriptCommand(rootOpts *RootOptions) *cobra.Command {
	var namespace string

	cmd := &cobra.Command{
		Use:   "typescript",
		Short: "Print TypeScript definitions for the collection endpoint responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := odataapp.NewApp(
				cmd.Context(),
				odataapp.NewConfig(),
				odataapp.WithTypeScriptOutput(namespace, cmd.OutOrStdout(), map[string]reflect.Type{
					"OrderBy":       reflect.TypeFor[odata.OrderBy](),
					"Page":          reflect.TypeFor[database.Page](),
					"ErrorResponse": reflect.TypeFor[odatahttp.ErrorResponse](),
				}),
			)

			return err
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "OData", "TypeScript namespace")

	return cmd
}
