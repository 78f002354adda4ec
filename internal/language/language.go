package language

import (
	gqlparser "github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// ParseQuery parses an unnamed query document.
func ParseQuery(source string) (*QueryDocument, error) {
	return ParseQuerySource(NewSource(source, ""))
}

// ParseQuerySource parses a query document whose node positions resolve back
// to src through SourceOf.
func ParseQuerySource(src *Source) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(src.parserSource())
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func ParseSchema(name, source string) (*SchemaDocument, error) {
	return ParseSchemaSource(NewSource(source, name))
}

// ParseSchemaSource parses an SDL document without validating it.
func ParseSchemaSource(src *Source) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(src.parserSource())
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates SDL documents, merging them with the
// built-in prelude.
func LoadSchema(sources ...*Source) (*Schema, error) {
	in := make([]*ast.Source, len(sources))
	for i, s := range sources {
		in[i] = s.parserSource()
	}
	sch, err := gqlparser.LoadSchema(in...)
	if err != nil {
		return nil, err
	}
	return sch, nil
}

// Validate runs the standard validation rules over a parsed query.
func Validate(schema *Schema, doc *QueryDocument) gqlerror.List {
	return validator.Validate(schema, doc)
}
