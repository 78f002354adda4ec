package main

import (
	"encoding/json"

	executor "github.com/hanpama/gqlcore/internal/executor"
	"github.com/hanpama/gqlcore/internal/introspection"
	"github.com/hanpama/gqlcore/internal/render"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"github.com/spf13/cobra"
)

func newExecCmd(c *cli) *cobra.Command {
	var (
		queryPath     string
		dataPath      string
		operation     string
		vars          []string
		introspective bool
		parallelism   int
	)
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Execute a query against static data",
		Long: `Exec runs a query against a root value read from a JSON or msgpack file
and prints the response. Objects are read field by field from the data, and
abstract values name their concrete type in __typename.

Parse and validation errors are reported like check does; field errors are
part of the printed response.`,
		Example: `  gqlcore exec -q hero.graphql --data starwars.json --var episode=JEDI
  gqlcore exec -q '-' --data starwars.msgpack < hero.graphql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := c.loadSchema(cmd)
			if err != nil {
				return err
			}
			root, err := loadData(dataPath)
			if err != nil {
				return err
			}
			runtime, sch := dataRuntime(sch, parallelism, introspective)
			doc, err := c.loadDocument(cmd, sch, queryPath)
			if err != nil {
				return err
			}
			variables, err := parseVars(vars, c.config.Variables)
			if err != nil {
				return err
			}

			res := executor.NewExecutor(runtime, sch).ExecuteRequest(cmd.Context(), doc, operation, variables, root)
			return writeResponse(cmd, c.format, res.Response())
		},
	}
	cmd.Flags().StringVarP(&queryPath, "query", "q", "", "Query document, or - for stdin")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Root value as a .json or .msgpack file")
	cmd.Flags().StringVarP(&operation, "operation", "o", "", "Operation name when the document has several")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Variable as name=value; repeatable")
	cmd.Flags().BoolVar(&introspective, "introspection", true, "Answer __schema and __type fields")
	cmd.Flags().IntVar(&parallelism, "parallelism", 4, "Async fields resolved concurrently")
	return cmd
}

// dataRuntime serves static data for sch, wrapped with introspection when
// asked. It returns the schema queries must be executed against.
func dataRuntime(sch *schema.Schema, parallelism int, introspective bool) (executor.Runtime, *schema.Schema) {
	var runtime executor.Runtime = executor.NewDataRuntime(sch, parallelism)
	if introspective {
		w := introspection.Wrap(runtime, sch)
		return w.Runtime, w.Schema
	}
	return runtime, sch
}

// writeResponse prints res indented unless the text format asks for a single
// line.
func writeResponse(cmd *cobra.Command, format render.Format, res executor.Response) error {
	if format == render.FormatText {
		b, err := json.Marshal(res)
		if err != nil {
			return err
		}
		writeOutput(cmd, string(b))
		return nil
	}
	out, err := render.JSON(res)
	if err != nil {
		return err
	}
	writeOutput(cmd, out)
	return nil
}
