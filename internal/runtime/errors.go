package runtime

import (
	"errors"
	"fmt"
)

// ErrNoResolver is returned when props are requested without a module resolver.
var ErrNoResolver = errors.New("module resolver is required")

// LoaderPanicError wraps the value a loader panicked with.
type LoaderPanicError struct {
	Value any
}

func (e *LoaderPanicError) Error() string {
	return failureMessage(e.Value)
}

// Unwrap returns the panic value when it was an error.
func (e *LoaderPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// FormatLoaderError builds the message stored for a failed loader.
func FormatLoaderError(uid string, failure any) string {
	return fmt.Sprintf("Error during preload data for component %s: %s", uid, failureMessage(failure))
}

// failureMessage uses the failure's own message when it has one and its text form otherwise.
func failureMessage(failure any) string {
	switch v := failure.(type) {
	case nil:
		return "<nil>"
	case error:
		return v.Error()
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
