// Package script runs the inline scripts of a document against its box tree.
// Scripts run before the first layout, so the tree holds only tag and text
// boxes.
package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"htmlbox/pkg/html"
)

// ErrTimeout interrupts a script that runs longer than the configured limit.
var ErrTimeout = errors.New("script timed out")

type Options struct {
	// Timeout bounds each script; zero means no limit.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Engine executes JavaScript against a document's boxes.
type Engine struct {
	vm      *goja.Runtime
	timeout time.Duration
	logger  *zap.Logger
	dom     *domContext
}

// New creates an engine with a fresh goja runtime.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	vm := goja.New()
	e := &Engine{vm: vm, timeout: opts.Timeout, logger: logger.Named("script")}

	c := &consoleAPI{logger: e.logger.Named("console")}
	c.register(vm)
	return e
}

// Execute runs the document's scripts in order and restyles the tree. A
// failing script is logged and the rest still run; the failures are joined
// into the returned error.
func (e *Engine) Execute(ctx context.Context, doc *html.Document) error {
	e.bind(doc)
	var errs []error
	for i, src := range doc.Scripts {
		if err := e.run(ctx, src); err != nil {
			e.logger.Warn("script failed", zap.Int("index", i), zap.Error(err))
			errs = append(errs, fmt.Errorf("script %d: %w", i, err))
			if ctx.Err() != nil {
				break
			}
		}
	}
	doc.Restyle(doc.Root)
	return errors.Join(errs...)
}

// Eval runs src against doc and returns its completion value exported to Go.
func (e *Engine) Eval(ctx context.Context, doc *html.Document, src string) (any, error) {
	e.bind(doc)
	v, err := e.runValue(ctx, src)
	doc.Restyle(doc.Root)
	if err != nil {
		return nil, err
	}
	return v.Export(), nil
}

func (e *Engine) bind(doc *html.Document) {
	if e.dom == nil || e.dom.doc != doc {
		e.dom = registerDocument(e.vm, doc)
	}
}

func (e *Engine) run(ctx context.Context, src string) error {
	_, err := e.runValue(ctx, src)
	return err
}

func (e *Engine) runValue(ctx context.Context, src string) (goja.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() { e.vm.Interrupt(ctx.Err()) })
	defer stop()
	if e.timeout > 0 {
		timer := time.AfterFunc(e.timeout, func() { e.vm.Interrupt(ErrTimeout) })
		defer timer.Stop()
	}
	defer e.vm.ClearInterrupt()

	v, err := e.vm.RunString(src)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause, ok := interrupted.Value().(error); ok {
				return nil, cause
			}
		}
		return nil, err
	}
	return v, nil
}
