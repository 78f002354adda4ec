package gqlerrors

import (
	"errors"
	"runtime"
)

// Frame is a single resolved call site.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Stack lists frames from the most recent call outward.
type Stack []Frame

const maxStackDepth = 32

// stackTracer is implemented by errors that carry their own stack, including
// *Error.
type stackTracer interface {
	StackTrace() Stack
}

func stackOf(err error) Stack {
	var st stackTracer
	if err != nil && errors.As(err, &st) {
		return st.StackTrace()
	}
	return nil
}

// captureStack records the caller's stack. skip 0 starts at the function
// calling captureStack's caller.
func captureStack(skip int) Stack {
	pc := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip+3, pc)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pc[:n])
	out := make(Stack, 0, n)
	for {
		fr, more := frames.Next()
		out = append(out, Frame{Function: fr.Function, File: fr.File, Line: fr.Line})
		if !more {
			break
		}
	}
	return out
}
