package main

import (
	"context"
	"fmt"

	executor "github.com/hanpama/gqlcore/internal/executor"
	"github.com/hanpama/gqlcore/internal/introspection"
	language "github.com/hanpama/gqlcore/internal/language"
	"github.com/hanpama/gqlcore/internal/render"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"github.com/spf13/cobra"
)

const schemaQuery = `{
  __schema {
    queryType { name }
    mutationType { name }
    subscriptionType { name }
    types {
      kind
      name
      description
      fields(includeDeprecated: true) { name type { ...TypeRef } isDeprecated }
      inputFields { name type { ...TypeRef } defaultValue }
      interfaces { name }
      possibleTypes { name }
      enumValues(includeDeprecated: true) { name isDeprecated }
    }
  }
}

fragment TypeRef on __Type {
  kind name ofType { kind name ofType { kind name ofType { kind name } } }
}`

func newSchemaCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the loaded schema",
		Long: `Schema validates the schema file and prints it back as SDL. With
--format json it prints the result of an introspection query instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := c.loadSchema(cmd)
			if err != nil {
				return err
			}
			if c.format != render.FormatJSON {
				fmt.Fprint(cmd.OutOrStdout(), schema.Render(sch))
				return nil
			}
			data, err := introspect(cmd.Context(), sch)
			if err != nil {
				return err
			}
			out, err := render.JSON(data)
			if err != nil {
				return err
			}
			writeOutput(cmd, out)
			return nil
		},
	}
}

// introspect runs schemaQuery against sch.
func introspect(ctx context.Context, sch *schema.Schema) (any, error) {
	w := introspection.Wrap(executor.NewDataRuntime(sch, 1), sch)
	doc, err := language.ParseQuery(schemaQuery)
	if err != nil {
		return nil, err
	}
	res := executor.NewExecutor(w.Runtime, w.Schema).ExecuteRequest(ctx, doc, "", nil, nil)
	if len(res.Errors) > 0 {
		return nil, res.Errors
	}
	return res.Data, nil
}
