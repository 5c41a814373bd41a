package layout

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"htmlbox/pkg/css"
)

// RefreshRequest asks the rendering goroutine to repaint, and to lay out
// again first when Layout is set.
type RefreshRequest struct {
	Layout bool
}

// refreshQueueSize bounds pending refresh requests; further requests are
// dropped since one refresh covers them all.
const refreshQueueSize = 16

// Engine owns a box tree and the state shared by all of its boxes: viewport,
// scroll offset, page geometry, document size, fonts, error sink and image
// loading.
type Engine struct {
	mu sync.Mutex

	viewport   Size
	pageSize   Size
	marginTop  float64
	scroll     Point
	actualSize Size

	root     *Box
	fonts    *FontCache
	logger   *zap.Logger
	reporter ErrorReporter
	loader   ImageLoader

	selectionColor css.Color

	refresh chan RefreshRequest
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewEngine creates an engine for a viewport of the given size. factory may
// be nil, in which case fonts carry size-derived metrics only.
func NewEngine(factory FontFactory, viewportWidth, viewportHeight float64) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		viewport:       Size{Width: viewportWidth, Height: viewportHeight},
		logger:         zap.NewNop(),
		selectionColor: css.Color{R: 0xa9, G: 0xcd, B: 0xf5, A: 0xff},
		refresh:        make(chan RefreshRequest, refreshQueueSize),
		ctx:            ctx,
		cancel:         cancel,
	}
	e.fonts = NewFontCache(factory, e.logger)
	return e
}

// SetLogger replaces the engine's logger. Fonts already cached keep theirs.
func (e *Engine) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e.logger = logger
	e.fonts.logger = logger
}

func (e *Engine) Logger() *zap.Logger { return e.logger }

// SetErrorReporter sets the sink for layout and paint faults. Without one,
// faults are logged.
func (e *Engine) SetErrorReporter(r ErrorReporter) { e.reporter = r }

// SetImageLoader sets the loader image boxes use to fetch their source.
func (e *Engine) SetImageLoader(l ImageLoader) { e.loader = l }

// SetViewport changes the viewport size. The next layout uses it.
func (e *Engine) SetViewport(width, height float64) {
	e.viewport = Size{Width: width, Height: height}
}

func (e *Engine) Viewport() Size { return e.viewport }

// SetPageSize enables pagination. A zero height disables it.
func (e *Engine) SetPageSize(s Size) { e.pageSize = s }

func (e *Engine) PageSize() Size { return e.pageSize }

// SetMarginTop sets the top page margin used when pushing content to a new page.
func (e *Engine) SetMarginTop(m float64) { e.marginTop = m }

func (e *Engine) MarginTop() float64 { return e.marginTop }

// SetScrollOffset sets how far the document is scrolled; fixed boxes ignore it.
func (e *Engine) SetScrollOffset(p Point) { e.scroll = p }

func (e *Engine) ScrollOffset() Point { return e.scroll }

// SetSelectionColor sets the highlight painted behind selected words.
func (e *Engine) SetSelectionColor(c css.Color) { e.selectionColor = c }

// Fonts returns the engine's font cache.
func (e *Engine) Fonts() *FontCache { return e.fonts }

// ActualSize is the extent of the laid out document, excluding fixed boxes.
func (e *Engine) ActualSize() Size { return e.actualSize }

// Refresh delivers the refresh requests posted by image loads.
func (e *Engine) Refresh() <-chan RefreshRequest { return e.refresh }

// SetRoot attaches root as the document root, detaching any previous one.
func (e *Engine) SetRoot(root *Box) error {
	if root != nil && root.parent != nil {
		return errors.New("engine root must not have a parent")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.root != nil && e.root != root {
		e.root.setEngine(nil)
	}
	e.root = root
	if root != nil {
		root.setEngine(e)
	}
	e.actualSize = Size{}
	return nil
}

func (e *Engine) Root() *Box { return e.root }

// PerformLayout normalizes the tree and lays out the whole document.
func (e *Engine) PerformLayout(g Graphics) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.root == nil {
		return nil
	}
	NormalizeTree(e.root)
	e.actualSize = Size{}
	return e.root.PerformLayout(g)
}

// Paint draws the document. Layout must have run first.
func (e *Engine) Paint(g Graphics) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.root == nil {
		return nil
	}
	return e.root.Paint(g)
}

// ProcessEvents drains pending refresh requests without blocking and lays
// out again if any asked for it. It reports whether a repaint is due.
func (e *Engine) ProcessEvents(g Graphics) (repaint bool, err error) {
	relayout := false
	for {
		select {
		case req := <-e.refresh:
			repaint = true
			relayout = relayout || req.Layout
			continue
		default:
		}
		break
	}
	if relayout {
		err = e.PerformLayout(g)
	}
	return repaint, err
}

// PendingImages counts image loads started by layout that have not
// completed.
func (e *Engine) PendingImages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	if e.root != nil {
		e.root.Walk(func(b *Box) bool {
			if b.ImagePending() {
				n++
			}
			return true
		})
	}
	return n
}

// Dispose cancels in-flight image loads and releases the tree.
func (e *Engine) Dispose() {
	e.cancel()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.root != nil {
		e.root.Dispose()
	}
}
