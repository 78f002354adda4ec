// Package gqlerrors implements the located GraphQL error value surfaced to
// clients.
//
// An Error aggregates a message, the syntax nodes it originated from, the
// source positions and line/column locations derived from those nodes, an
// optional response path, optional extensions, and an optional original
// error. Locations are derived once, at construction, from either explicit
// positions within a Source or from the start offsets of the supplied nodes;
// nodes built without a location contribute nothing.
//
// # Wire format
//
// Formatted is the representation embedded in a response's "errors" list.
// Its JSON keys are always emitted in the order message, locations, path,
// extensions, and the last three are omitted when empty. Error marshals to
// the same representation.
//
// # Equality
//
// Equal compares two errors by their formatted representations, so an Error
// also equals its own Formatted value. Identity is unaffected: *Error values
// used as map keys or compared with == are distinct per construction even
// when Equal reports true. Callers that need value-keyed sets should key by
// a serialization of Formatted instead.
//
// # Printing
//
// String renders the message followed by one block per location, each with a
// "name:line:column" header and up to three lines of source context with a
// caret under the reported column.
//
// # Located errors
//
// Located is the single entry point an executor uses to turn an arbitrary
// resolver failure into a response-ready error carrying field nodes and a
// response path. An error that already has a path passes through unchanged.
package gqlerrors
