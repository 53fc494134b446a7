package observability

import (
	"fmt"
	"runtime/debug"
)

// RecoverPanic recovers from a panic and logs it with the panic value, the
// full stack trace, and the given context string. Call it in a defer; after
// logging, the panic is not re-raised.
func RecoverPanic(logger *Logger, context string) {
	if r := recover(); r != nil {
		logger.WithField("panic", r).
			WithField("stack", string(debug.Stack())).
			WithField("context", context).
			Error("PANIC recovered")
	}
}

// MustRecover converts a recovered panic value into an error, or returns nil
// when no panic occurred:
//
//	defer func() {
//	    if err := observability.MustRecover(recover()); err != nil {
//	        // handle as a normal error
//	    }
//	}()
//
// The stack trace is not included; use RecoverPanic when the trace should be
// logged.
func MustRecover(r interface{}) error {
	if r != nil {
		return fmt.Errorf("panic: %v", r)
	}
	return nil
}
