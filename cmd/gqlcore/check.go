package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/hanpama/gqlcore/internal/render"
	"github.com/spf13/cobra"
)

var okLabel = color.New(color.FgGreen, color.Bold)

type checkResult struct {
	Valid  bool `json:"valid"`
	Errors any  `json:"errors"`
}

func newCheckCmd(c *cli) *cobra.Command {
	var queryPath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Parse and validate a query document against the schema",
		Long: `Check parses a query document and validates it against the schema.
Errors are printed with the offending source lines and a caret under each
location. With --format json the errors are printed in their response form.
The command fails when the document is invalid.`,
		Example: `  gqlcore check -q query.graphql
  echo '{ hero { nam } }' | gqlcore check -q - -f json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := c.loadSchema(cmd)
			if err != nil {
				return err
			}
			src, err := readSource(cmd, queryPath)
			if err != nil {
				return err
			}
			_, errs := parseAndValidate(sch, src)

			if c.format == render.FormatJSON {
				res := checkResult{Valid: len(errs) == 0, Errors: []any{}}
				if len(errs) > 0 {
					res.Errors = errs.Formatted()
				}
				out, err := render.JSON(res)
				if err != nil {
					return err
				}
				writeOutput(cmd, out)
			} else if len(errs) > 0 {
				c.reportErrors(cmd, errs)
			} else {
				writeOutput(cmd, fmt.Sprintf("%s %s is valid", okLabel.Sprint("ok:"), src.Name()))
			}
			if len(errs) > 0 {
				return ErrInvalidDocument
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&queryPath, "query", "q", "", "Query document, or - for stdin")
	return cmd
}
