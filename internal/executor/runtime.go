package executor

import (
	"context"
)

// Runtime supplies field values to the Executor.
//
// ResolveSync is called for fields that are not Async, as soon as their
// parent completes. All Async fields reached at one depth go to a single
// BatchResolveAsync call, which must return one result per task in task
// order; it is never called with an empty batch. Fields under a position
// already nulled by a Non-Null failure are not sent.
//
// objectType and field name the field being resolved; source is the parent
// value. Errors returned by any method become located field errors.
// Implementations must not mutate source or args.
type Runtime interface {
	// ResolveSync returns the raw value of a field that is not Async.
	// Returning (nil, nil) yields null.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves the Async fields of one depth. results[i]
	// belongs to tasks[i].
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// ResolveType names the object type of value, which was returned for
	// the interface or union abstractType.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// ResolveUnionConcreteValue and ResolveInterfaceConcreteValue unwrap an
	// abstract value once its object type is known. The result is the source
	// of the object's fields.
	ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error)
	ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error)

	// SerializeLeafValue converts a scalar or enum value to its result form.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

// AsyncResolveTask is one Async field of a batch.
type AsyncResolveTask struct {
	ObjectType string
	Field      string
	// Source is the parent value; the initial value for root fields.
	Source any
	// Args holds the coerced arguments, defaults applied.
	Args map[string]any
}

// AsyncResolveResult is the outcome of one task. Error fails that field
// only.
type AsyncResolveResult struct {
	Value any
	Error error
}
