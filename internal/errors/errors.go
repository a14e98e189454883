// Package errors provides error handling utilities for tcgaimport.
// It offers consistent error wrapping, categorisation of fatal run
// conditions, and counters for the failures a run tolerates.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Op represents an operation name for error context.
type Op string

// Error represents an application error with context.
type Error struct {
	Op   Op     // Operation that failed
	Kind Kind   // Category of error
	Err  error  // Underlying error
	Msg  string // Additional context message
}

// Kind represents the category of error.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindIO
	KindConfig
	KindNetwork
	KindParse
	KindDatabase
	KindMissingSource
	KindUnsupportedPlatform
	KindChecksum
)

// String returns the string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindConfig:
		return "config"
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindDatabase:
		return "database"
	case KindMissingSource:
		return "missing source"
	case KindUnsupportedPlatform:
		return "unsupported platform"
	case KindChecksum:
		return "checksum"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(string(e.Op))
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
		if e.Err != nil {
			b.WriteString(": ")
		}
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error with the given arguments.
// Arguments can be: Op, Kind, error, string (message).
func E(args ...interface{}) *Error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case error:
			e.Err = a
		case string:
			e.Msg = a
		}
	}
	return e
}

// Wrap wraps an error with an operation name for context.
func Wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapMsg wraps an error with an operation name and message.
func WrapMsg(op Op, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Msg: msg, Err: err}
}

// IsKind reports whether any *Error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// GetKind returns the kind of the first categorised error in err's chain,
// or KindUnknown.
func GetKind(err error) Kind {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return KindUnknown
		}
		if e.Kind != KindUnknown {
			return e.Kind
		}
		err = e.Err
	}
	return KindUnknown
}

// SkipCounter tracks how many times rows or records have been skipped.
// Skipped rows are not surfaced to the error sidecar; the counter only
// gives them log visibility.
type SkipCounter struct {
	Op         string
	Count      int
	LastErr    error
	LastDetail string
}

// NewSkipCounter creates a new skip counter for the given operation.
func NewSkipCounter(op string) *SkipCounter {
	return &SkipCounter{Op: op}
}

// Skip records a skipped item.
func (s *SkipCounter) Skip(err error, detail string) {
	s.Count++
	s.LastErr = err
	s.LastDetail = detail
}

// Report logs a summary at debug level if any items were skipped.
func (s *SkipCounter) Report(logger *zap.Logger) {
	if s.Count == 0 || logger == nil {
		return
	}
	logger.Debug("skipped malformed rows",
		zap.String("op", s.Op),
		zap.Int("count", s.Count),
		zap.NamedError("last_error", s.LastErr),
		zap.String("detail", s.LastDetail))
}

// Warnings is the per-dataSubType list of recovered extraction anomalies.
// Messages end up one per line in the error sidecar.
type Warnings struct {
	msgs []string
}

// Addf appends a formatted warning.
func (w *Warnings) Addf(format string, args ...interface{}) {
	w.msgs = append(w.msgs, fmt.Sprintf(format, args...))
}

// Messages returns a copy of the recorded warnings.
func (w *Warnings) Messages() []string {
	out := make([]string, len(w.msgs))
	copy(out, w.msgs)
	return out
}

// Len returns the number of recorded warnings.
func (w *Warnings) Len() int {
	return len(w.msgs)
}

// Reset clears the list.
func (w *Warnings) Reset() {
	w.msgs = w.msgs[:0]
}
