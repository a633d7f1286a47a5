// Package logging configures structured logging for the mcpinject CLI.
//
// It builds on log/slog with a TTY-optimized, colorized text handler for
// interactive use, a JSON handler for machine consumption, and a
// multi-handler for writing both at once (e.g. text on stderr plus JSON to
// a --log-file). Color is disabled automatically when stderr is not a
// terminal, when NO_COLOR is set, or when TERM=dumb.
//
// Verbosity maps onto levels with [LevelFromVerbosity]: no flag is Info,
// -v is Debug, -vv is Trace. [ForTest] returns a logger wired to a test's
// log output.
package logging
