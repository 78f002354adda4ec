package main

import (
	"fmt"
	"strings"

	executor "github.com/hanpama/gqlcore/internal/executor"
	language "github.com/hanpama/gqlcore/internal/language"
	"github.com/hanpama/gqlcore/internal/render"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"github.com/spf13/cobra"
)

type collectedField struct {
	Name   string `json:"name"`
	Alias  string `json:"alias,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type collectedGroup struct {
	ResponseKey string           `json:"responseKey"`
	Fields      []collectedField `json:"fields"`
}

func (f collectedField) String() string {
	name := f.Name
	if f.Alias != "" {
		name = f.Alias + ": " + f.Name
	}
	return fmt.Sprintf("%s (%d:%d)", name, f.Line, f.Column)
}

func newCollectCmd(c *cli) *cobra.Command {
	var (
		queryPath string
		typeName  string
		operation string
		vars      []string
	)
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Show the field groups an operation collects for a runtime type",
		Long: `Collect expands the fragments of an operation's root selection set and
applies @skip and @include, then lists the resulting field groups in response
order. Each group lists the field nodes merged under one response key.

The runtime type defaults to the operation's root type. Pass --type to see
what a selection on an abstract type yields for one of its possible types.`,
		Example: `  gqlcore collect -q query.graphql
  gqlcore collect -q query.graphql --type Droid --var withFriends=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := c.loadSchema(cmd)
			if err != nil {
				return err
			}
			doc, err := c.loadDocument(cmd, sch, queryPath)
			if err != nil {
				return err
			}
			op, err := selectOperation(doc, operation)
			if err != nil {
				return err
			}
			runtimeType, err := runtimeTypeFor(sch, op, typeName)
			if err != nil {
				return err
			}
			variables, err := parseVars(vars, c.config.Variables)
			if err != nil {
				return err
			}

			groups, err := executor.CollectFields(sch, language.FragmentMap(doc), variables, runtimeType,
				op.SelectionSet, executor.NewFieldGroupMap(), map[string]struct{}{})
			if err != nil {
				return err
			}
			out, err := collectRenderer(groups).Render(c.format)
			if err != nil {
				return err
			}
			writeOutput(cmd, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&queryPath, "query", "q", "", "Query document, or - for stdin")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Runtime object type (default: the operation's root type)")
	cmd.Flags().StringVarP(&operation, "operation", "o", "", "Operation name when the document has several")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Variable as name=value; repeatable")
	return cmd
}

func collectRenderer(groups *executor.FieldGroupMap) render.Renderer[collectedGroup] {
	data := make([]collectedGroup, 0, groups.Len())
	for _, g := range groups.Groups() {
		group := collectedGroup{ResponseKey: g.ResponseKey}
		for _, f := range g.Fields {
			cf := collectedField{Name: f.Name, Alias: f.Alias}
			if f.Position != nil {
				cf.Line, cf.Column = f.Position.Line, f.Position.Column
			}
			group.Fields = append(group.Fields, cf)
		}
		data = append(data, group)
	}
	return render.Renderer[collectedGroup]{
		Data: data,
		Text: func(g collectedGroup) string {
			return g.ResponseKey + "\t" + joinFields(g.Fields, ", ")
		},
		Header: []string{"RESPONSE KEY", "FIELDS"},
		Row: func(g collectedGroup) []string {
			return []string{g.ResponseKey, joinFields(g.Fields, "\n")}
		},
	}
}

func joinFields(fields []collectedField, sep string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, sep)
}

func selectOperation(doc *language.QueryDocument, name string) (*language.OperationDefinition, error) {
	if name == "" {
		if len(doc.Operations) != 1 {
			return nil, fmt.Errorf("document has %d operations, choose one with --operation", len(doc.Operations))
		}
		return doc.Operations[0], nil
	}
	if op := doc.Operations.ForName(name); op != nil {
		return op, nil
	}
	names := make([]string, 0, len(doc.Operations))
	for _, op := range doc.Operations {
		names = append(names, op.Name)
	}
	return nil, notFound("operation", name, names)
}

func runtimeTypeFor(sch *schema.Schema, op *language.OperationDefinition, name string) (*schema.Type, error) {
	if name == "" {
		switch op.Operation {
		case language.Mutation:
			name = sch.MutationType
		case language.Subscription:
			name = sch.SubscriptionType
		default:
			name = sch.QueryType
		}
	}
	t := sch.Type(name)
	if t == nil {
		names := make([]string, 0, len(sch.Types))
		for n := range sch.Types {
			names = append(names, n)
		}
		return nil, notFound("type", name, names)
	}
	if t.Kind != schema.TypeKindObject {
		return nil, fmt.Errorf("type '%s' is %s, fields are collected for object types", name, t.Kind)
	}
	return t, nil
}
