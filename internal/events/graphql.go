package events

import (
	"time"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
)

// OperationStart is emitted once a request document has been parsed and
// validated, before execution begins.
type OperationStart struct {
	OperationName string
	OperationType string
}

// OperationFinish is emitted after execution with the located errors of the
// result.
type OperationFinish struct {
	OperationName string
	OperationType string
	Errors        gqlerrors.List
	Duration      time.Duration
}

// RequestRejected is emitted when a request fails before execution. Stage is
// "parse" or "validate".
type RequestRejected struct {
	Stage  string
	Errors gqlerrors.List
}
