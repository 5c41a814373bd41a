package layout

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrorKind categorizes faults raised while laying out or painting a box.
type ErrorKind int

const (
	ErrLayout ErrorKind = iota
	ErrPaint
	ErrTableLayout
)

func (k ErrorKind) String() string {
	switch k {
	case ErrLayout:
		return "layout"
	case ErrPaint:
		return "paint"
	case ErrTableLayout:
		return "table-layout"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

var (
	ErrSiblingNotFound   = errors.New("sibling is not a child of the parent box")
	ErrUnresolvedColumn  = errors.New("table column width is unresolved")
	ErrNoContainingBlock = errors.New("box has no containing block")
	ErrCyclicTree        = errors.New("box cannot become a descendant of itself")
	errPanic             = errors.New("panic")
)

// Error tags a failure with the subsystem it came from.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// kindOf returns the kind carried by err, or def.
func kindOf(err error, def ErrorKind) ErrorKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return def
}

// ErrorReporter receives faults. Implementations must not panic.
type ErrorReporter interface {
	ReportError(kind ErrorKind, message string, err error)
}

// ErrorReporterFunc adapts a function to ErrorReporter.
type ErrorReporterFunc func(kind ErrorKind, message string, err error)

func (f ErrorReporterFunc) ReportError(kind ErrorKind, message string, err error) {
	f(kind, message, err)
}

// LogReporter writes every fault to a zap logger.
type LogReporter struct {
	logger *zap.Logger
}

func NewLogReporter(logger *zap.Logger) *LogReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) ReportError(kind ErrorKind, message string, err error) {
	r.logger.Error(message, zap.String("kind", kind.String()), zap.Error(err))
}

// recovered converts a recovered panic value into an error.
func recovered(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("%w: %w", errPanic, err)
	}
	return fmt.Errorf("%w: %v", errPanic, v)
}
