// Package decodeerr defines the error kinds surfaced at the decode
// boundary: ConfigError and ModelError are returned values, DeadlineExceeded
// is reported via a flag on DecoderState rather than an error return, and
// InvariantViolation is a panic reserved for internal programmer bugs.
package decodeerr

import "fmt"

// ConfigError reports impossible decoder parameters. It fails construction,
// never a running decode.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// ModelError reports an unrecoverable lookup failure from the translation
// option store or language model. It fails the current sentence only; the
// caller may continue with the next one.
type ModelError struct {
	Op  string
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model: %s: %v", e.Op, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// InvariantViolation indicates an internal assertion failed: a bug in this
// package, not in the caller's data. Code that detects one should panic
// with it rather than return it; these are fatal, not recoverable outcomes
// of decoding.
type InvariantViolation struct {
	Where string
	Why   string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Where, e.Why)
}

// Panic raises an InvariantViolation.
func Panic(where, why string) {
	panic(&InvariantViolation{Where: where, Why: why})
}
