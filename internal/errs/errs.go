// Package errs defines the typed error categories the core distinguishes
// (spec §7): transient I/O, grammar absence, parse errors, and invariant
// violations, each with its own propagation policy.
package errs

import "fmt"

// ErrorType is the closed set of error categories the orchestrator tracks
// separately in a RunSummary.
type ErrorType string

const (
	// ErrorTypeTransientIO: a file became unreadable mid-run. Logged,
	// counted, the file is skipped, indexing continues.
	ErrorTypeTransientIO ErrorType = "transient_io"
	// ErrorTypeNoGrammar: a recognized extension has no registered grammar.
	// Silent skip with a counter; the file is still registered.
	ErrorTypeNoGrammar ErrorType = "no_grammar"
	// ErrorTypeParse: tree-sitter returned a partial/errored tree. Warning
	// with a counter; the partial tree is discarded.
	ErrorTypeParse ErrorType = "parse_error"
	// ErrorTypeInvariant: a Store invariant was violated (missing endpoint,
	// duplicate unique key). A bug: aborts the run without committing.
	ErrorTypeInvariant ErrorType = "invariant"
)

// IndexError carries the category plus enough context to explain an
// indexing-time failure without losing the underlying cause.
type IndexError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
}

func (e *IndexError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s): %v", e.Operation, e.Path, e.Type, e.Underlying)
	}
	return fmt.Sprintf("%s (%s): %v", e.Operation, e.Type, e.Underlying)
}

func (e *IndexError) Unwrap() error { return e.Underlying }

// New builds an IndexError for the given category.
func New(t ErrorType, op, path string, underlying error) *IndexError {
	return &IndexError{Type: t, Path: path, Operation: op, Underlying: underlying}
}

// IsFatal reports whether an error kind must abort the current run without
// committing, per spec §7.
func IsFatal(t ErrorType) bool {
	return t == ErrorTypeInvariant
}

// RunSummary accumulates per-category counters across one indexing run,
// surfaced as the final summary line (spec §7).
type RunSummary struct {
	TransientIO int
	NoGrammar   int
	ParseErrors int
	Invariant   int
}

// Record increments the counter matching t.
func (s *RunSummary) Record(t ErrorType) {
	switch t {
	case ErrorTypeTransientIO:
		s.TransientIO++
	case ErrorTypeNoGrammar:
		s.NoGrammar++
	case ErrorTypeParse:
		s.ParseErrors++
	case ErrorTypeInvariant:
		s.Invariant++
	}
}

// Empty reports whether nothing was recorded.
func (s *RunSummary) Empty() bool {
	return s.TransientIO == 0 && s.NoGrammar == 0 && s.ParseErrors == 0 && s.Invariant == 0
}

func (s *RunSummary) String() string {
	if s.Empty() {
		return ""
	}
	return fmt.Sprintf("%d unreadable, %d parse errors, %d no grammar, %d invariant violations",
		s.TransientIO, s.ParseErrors, s.NoGrammar, s.Invariant)
}
