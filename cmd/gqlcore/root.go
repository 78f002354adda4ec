package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hanpama/gqlcore/internal/render"
	"github.com/spf13/cobra"
)

// cli holds the state shared by every command of one invocation.
type cli struct {
	schemaPath   string
	configPath   string
	formatStr    string
	otelEndpoint string

	format render.Format
	config config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:   "gqlcore",
		Short: "Collect fields, check documents and serve a GraphQL schema",
		Long: `gqlcore exposes a GraphQL execution core from the command line.

It shows how a query's selection sets collapse into field groups for a given
runtime type, reports parse and validation errors with source snippets,
executes queries against static JSON or msgpack data and serves that data
over HTTP.

By default the schema is read from ./schema.graphql. Use -s to point
elsewhere, or --config to load defaults from a TOML file.`,
		Example: `  # Show the field groups of a query for the Dog type
  gqlcore collect -q query.graphql --type Dog

  # Check a document read from stdin
  echo '{ hero { nam } }' | gqlcore check -q -

  # Execute a query against a JSON fixture
  gqlcore exec -q query.graphql --data data.json --var id=1000

  # Serve the fixture with tracing
  gqlcore serve --data data.json --otel-endpoint localhost:4317`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&c.schemaPath, "schema", "s", "schema.graphql", "GraphQL schema file, or a directory of .graphql files")
	cmd.PersistentFlags().StringVarP(&c.formatStr, "format", "f", string(render.DefaultFormat()), "Output format: json, text, pretty (default: pretty if interactive, text otherwise)")
	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML file with default settings")
	cmd.PersistentFlags().StringVar(&c.otelEndpoint, "otel-endpoint", "", "OTLP/gRPC collector endpoint for traces")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.prepare(cmd)
	}

	cmd.AddCommand(newCollectCmd(c))
	cmd.AddCommand(newCheckCmd(c))
	cmd.AddCommand(newSchemaCmd(c))
	cmd.AddCommand(newExecCmd(c))
	cmd.AddCommand(newServeCmd(c))
	return cmd
}

// prepare loads the config file and applies it to every flag the user did
// not set explicitly.
func (c *cli) prepare(cmd *cobra.Command) error {
	if c.configPath != "" {
		cfg, err := loadConfig(c.configPath)
		if err != nil {
			return err
		}
		c.config = cfg
	}
	if !flagChanged(cmd, "schema") && c.config.Schema != "" {
		c.schemaPath = c.config.Schema
	}
	if !flagChanged(cmd, "format") && c.config.Format != "" {
		c.formatStr = c.config.Format
	}
	if !flagChanged(cmd, "otel-endpoint") && c.config.OTel.Endpoint != "" {
		c.otelEndpoint = c.config.OTel.Endpoint
	}
	format, err := render.ParseFormat(c.formatStr)
	if err != nil {
		return err
	}
	c.format = format
	return nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

// executeWithArgs runs the CLI with args and stdin and returns what it
// wrote to stdout and stderr.
func executeWithArgs(args []string, stdin io.Reader) (stdout, stderr string, err error) {
	cmd := newRootCmd()
	outBuf, errBuf := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func writeOutput(cmd *cobra.Command, s string) {
	fmt.Fprintln(cmd.OutOrStdout(), s)
}
