package executor

import (
	"context"
	"fmt"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	language "github.com/hanpama/gqlcore/internal/language"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/hanpama/gqlcore/internal/executor"

// Path is a response path: field response keys (string) and list indices
// (int).
type Path = gqlerrors.Path

// Executor runs operations against a schema, delegating field values to a
// Runtime.
type Executor struct {
	runtime Runtime
	schema  *schema.Schema
	tracer  trace.Tracer
}

// Option configures an Executor.
type Option func(*Executor)

// WithTracerProvider sets the provider for execution spans. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Executor) { e.tracer = tp.Tracer(instrumentationName) }
}

func NewExecutor(runtime Runtime, schema *schema.Schema, opts ...Option) *Executor {
	e := &Executor{runtime: runtime, schema: schema}
	for _, opt := range opts {
		opt(e)
	}
	if e.tracer == nil {
		e.tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return e
}

// ExecuteRequest executes the selected operation of document. Failures are
// reported in the result's Errors; the result is never nil.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	ctx, span := e.tracer.Start(ctx, "graphql.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(semconv.GraphqlOperationName(operationName)),
	)
	defer span.End()

	res := e.execute(ctx, document, operationName, variableValues, initialValue)

	span.SetAttributes(attribute.Int("graphql.error_count", len(res.Errors)))
	for _, err := range res.Errors {
		span.RecordError(err)
	}
	if len(res.Errors) > 0 {
		span.SetStatus(codes.Error, res.Errors[0].Error())
	}
	return res
}

func (e *Executor) execute(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operation := findOperation(document, operationName)
	if operation == nil {
		return &ExecutionResult{Errors: gqlerrors.List{gqlerrors.New("operation not found")}}
	}
	trace.SpanFromContext(ctx).SetAttributes(semconv.GraphqlOperationTypeKey.String(string(operation.Operation)))

	variables, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: gqlerrors.List{gqlerrors.Located(err, nil, nil)}}
	}

	rootType, err := e.rootType(operation)
	if err != nil {
		return &ExecutionResult{Errors: gqlerrors.List{gqlerrors.Located(err, nil, nil)}}
	}

	ex := &execution{
		ctx:       ctx,
		runtime:   e.runtime,
		schema:    e.schema,
		fragments: language.FragmentMap(document),
		variables: variables,
	}
	return ex.run(rootType, operation.SelectionSet, initialValue)
}

func (e *Executor) rootType(operation *language.OperationDefinition) (*schema.Type, error) {
	at := gqlerrors.WithNodes(language.NodeAt(operation.Position))
	var t *schema.Type
	switch operation.Operation {
	case language.Query:
		t = e.schema.GetQueryType()
	case language.Mutation:
		t = e.schema.GetMutationType()
	case language.Subscription:
		t = e.schema.GetSubscriptionType()
	default:
		return nil, gqlerrors.New(fmt.Sprintf("unsupported operation type: %s", operation.Operation), at)
	}
	if t == nil {
		return nil, gqlerrors.New(fmt.Sprintf("root type not found for %s operation", operation.Operation), at)
	}
	return t, nil
}

// findOperation picks the operation named name, or the only operation of the
// document when name is empty.
func findOperation(document *language.QueryDocument, name string) *language.OperationDefinition {
	if name == "" && len(document.Operations) == 1 {
		return document.Operations[0]
	}
	if name == "" {
		return nil
	}
	for _, op := range document.Operations {
		if op.Name == name {
			return op
		}
	}
	return nil
}
