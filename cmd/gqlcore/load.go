package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/fatih/color"
	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	language "github.com/hanpama/gqlcore/internal/language"
	"github.com/hanpama/gqlcore/internal/render"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrInvalidDocument is returned after the errors of a schema or query
// document have been reported.
var ErrInvalidDocument = errors.New("invalid document")

var errorLabel = color.New(color.FgRed, color.Bold)

// loadSchema builds the schema from the --schema file, or from every
// .graphql file when it names a directory.
func (c *cli) loadSchema(cmd *cobra.Command) (*schema.Schema, error) {
	sch, err := schema.Load(c.schemaPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("schema file does not exist: %s", c.schemaPath)
		}
		var list gqlerrors.List
		if errors.As(err, &list) {
			c.reportErrors(cmd, list)
			return nil, ErrInvalidDocument
		}
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return sch, nil
}

// readSource reads a query document from path, or from stdin when path is "-".
func readSource(cmd *cobra.Command, path string) (*language.Source, error) {
	if path == "" {
		return nil, fmt.Errorf("a query document is required (--query)")
	}
	if path == "-" {
		body, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		return language.NewSource(string(body), "stdin"), nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return language.NewSource(string(body), filepath.Base(path)), nil
}

// parseAndValidate returns the located parse or validation errors of src.
func parseAndValidate(sch *schema.Schema, src *language.Source) (*language.QueryDocument, gqlerrors.List) {
	doc, err := language.ParseQuerySource(src)
	if err != nil {
		return nil, gqlerrors.FromParser(err, src)
	}
	if errs := language.Validate(sch.AST(), doc); len(errs) > 0 {
		return nil, gqlerrors.FromParser(errs, src)
	}
	return doc, nil
}

// loadDocument reads, parses and validates a query document, reporting any
// errors it finds.
func (c *cli) loadDocument(cmd *cobra.Command, sch *schema.Schema, path string) (*language.QueryDocument, error) {
	src, err := readSource(cmd, path)
	if err != nil {
		return nil, err
	}
	doc, errs := parseAndValidate(sch, src)
	if len(errs) > 0 {
		c.reportErrors(cmd, errs)
		return nil, ErrInvalidDocument
	}
	return doc, nil
}

// reportErrors writes errs to stderr, as their wire form in JSON mode and
// as source snippets otherwise.
func (c *cli) reportErrors(cmd *cobra.Command, errs gqlerrors.List) {
	w := cmd.ErrOrStderr()
	if c.format == render.FormatJSON {
		out, err := render.JSON(errs.Formatted())
		if err == nil {
			fmt.Fprintln(w, out)
		}
		return
	}
	for i, e := range errs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", errorLabel.Sprint("error:"), e.String())
	}
}

// loadData decodes a root value from a .json or .msgpack file.
func loadData(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.NewDecoder(f).Decode(&out)
	case ".msgpack", ".mp":
		dec := msgpack.NewDecoder(f)
		dec.UseLooseInterfaceDecoding(true)
		err = dec.Decode(&out)
	default:
		return nil, fmt.Errorf("unsupported data file extension %q (valid: .json, .msgpack)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// parseVars turns name=value pairs into variable values. Values are decoded
// as JSON when possible and kept as strings otherwise. defaults are copied
// first so flags override them.
func parseVars(pairs []string, defaults map[string]any) (map[string]any, error) {
	vars := make(map[string]any, len(defaults)+len(pairs))
	for k, v := range defaults {
		vars[k] = v
	}
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable %q, expected name=value", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		vars[name] = v
	}
	return vars, nil
}

const maxSuggestionDistance = 5

func findClosest(input string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(input, c); bestDist == -1 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist > maxSuggestionDistance {
		return ""
	}
	return best
}

// notFound builds an error for a missing name with a "did you mean"
// suggestion when a close candidate exists.
func notFound(kind, name string, candidates []string) error {
	sort.Strings(candidates)
	if suggestion := findClosest(name, candidates); suggestion != "" {
		return fmt.Errorf("%s '%s' does not exist, did you mean '%s'?", kind, name, suggestion)
	}
	return fmt.Errorf("%s '%s' does not exist", kind, name)
}
