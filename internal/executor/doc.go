// Package executor runs GraphQL operations over a Runtime and reports every
// failure as a located error.
//
// # Field collection
//
// CollectFields turns a selection set into a FieldGroupMap: field nodes
// grouped by response key (alias or name), with keys in the order they are
// first met while walking the selections depth-first. Inline fragments and
// fragment spreads are expanded in place when their type condition matches
// the runtime object type, so
//
//	{ a ...F b } fragment F on Query { c a }
//
// collects the groups a, c, b, and the a group holds both a nodes. @skip and
// @include are evaluated through DirectiveValues before anything else; a
// spread they exclude is not marked visited, so a later spread of the same
// fragment can still expand it. An invalid directive argument aborts
// collection with an error located at the directive.
//
// # Execution
//
// ExecuteRequest picks the operation, coerces the variables and completes
// the root selection set. Completion is breadth-first. Fields whose
// definition is not Async are resolved through Runtime.ResolveSync and
// completed immediately, which may descend any number of levels. Async
// fields are queued instead, with a null placeholder keeping their position
// in the response object. Once a depth has no synchronous work left, the
// queue is handed to Runtime.BatchResolveAsync as a single batch and each
// result is completed in place; whatever Async fields that completion meets
// form the next batch.
//
// Completed objects are *Object values, which keep response keys in
// collection order and marshal to JSON in that order. Plain converts them
// to ordinary maps.
//
// # Errors
//
// Errors are collected on the result rather than returned. Every error is a
// *gqlerrors.Error carrying the field nodes it refers to and the response
// path of the failing value:
//
//   - variable coercion failures stop execution and point at the variable
//     definition;
//   - argument and directive coercion failures point at the field or
//     directive;
//   - Runtime failures go through gqlerrors.Located, so a Runtime may return
//     its own *gqlerrors.Error to control message, nodes or extensions.
//
// A failed field is null. When its type is Non-Null the null moves to the
// nearest nullable ancestor position, possibly the whole data entry, and
// queued Async fields below that position are dropped before the next
// batch.
package executor
