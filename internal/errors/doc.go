// Package errors provides error handling conventions for the mcpinject CLI.
//
// This package defines the operation error taxonomy ([Kind]), sentinel errors
// for common failure conditions, and an ExitError type for CLI exit code
// handling following standard Unix conventions.
//
// # Error Kinds
//
// Every error surfaced by an injection operation is marked with exactly one
// [Kind]. Marking is done with [WithKind] and preserved through any amount of
// wrapping; [KindOf] recovers the kind from anywhere in the chain:
//
//	err := mcperrors.WithKind(errors.New("unexpected token"), mcperrors.KindCorruptInput)
//	if mcperrors.KindOf(err) == mcperrors.KindCorruptInput {
//	    // refuse to proceed to mutation
//	}
//
// All kinds are terminal for the current operation except
// [KindConcurrentModification], which the orchestrator retries a bounded
// number of times.
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, unknown client, etc.)
//   - ExitSystem (2): System-related error (I/O, permissions, etc.)
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion, and supports unwrapping via [errors.Unwrap] and [errors.As].
package errors
