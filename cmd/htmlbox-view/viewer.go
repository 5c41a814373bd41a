package main

import (
	"context"
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"go.uber.org/zap"

	"htmlbox/pkg/page"
)

// result is one finished render handed back to the window.
type result struct {
	location string
	title    string
	image    image.Image
	err      error
}

// viewer owns the current page. Requests only record the latest size or
// page and wake the render loop, so a burst of resizes costs one layout.
type viewer struct {
	renderer *page.Renderer
	logger   *zap.Logger
	publish  func(result)
	wake     chan struct{}

	mu       sync.Mutex
	page     *page.Page
	location string
	size     fyne.Size
	err      error
}

func newViewer(r *page.Renderer, logger *zap.Logger, publish func(result)) *viewer {
	return &viewer{
		renderer: r,
		logger:   logger,
		publish:  publish,
		wake:     make(chan struct{}, 1),
	}
}

func (v *viewer) kick() {
	select {
	case v.wake <- struct{}{}:
	default:
	}
}

func (v *viewer) resize(size fyne.Size) {
	v.mu.Lock()
	v.size = size
	v.mu.Unlock()
	v.kick()
}

// open loads location and replaces the current page once it parsed.
func (v *viewer) open(ctx context.Context, location string) {
	p, err := v.renderer.Open(ctx, location)
	if err != nil {
		v.logger.Warn("open failed", zap.String("location", location), zap.Error(err))
		v.mu.Lock()
		v.err = err
		v.mu.Unlock()
		v.kick()
		return
	}
	v.mu.Lock()
	old := v.page
	v.page, v.location, v.err = p, location, nil
	v.mu.Unlock()
	v.kick()

	// The render loop only holds a page while v.mu is held.
	if old != nil {
		v.mu.Lock()
		defer v.mu.Unlock()
		if err := old.Close(); err != nil {
			v.logger.Warn("closing page", zap.Error(err))
		}
	}
}

func (v *viewer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-v.wake:
			if r, ok := v.render(ctx); ok {
				v.publish(r)
			}
		}
	}
}

// render lays the current page out at the latest size and reports false when
// there is nothing to show yet.
func (v *viewer) render(ctx context.Context) (result, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.err != nil {
		err := v.err
		v.err = nil
		return result{err: err}, true
	}
	width := int(v.size.Width)
	if v.page == nil || width <= 0 {
		return result{}, false
	}
	c, err := v.page.Render(ctx, width, 0)
	if err != nil {
		return result{location: v.location, err: err}, true
	}
	v.logger.Debug("rendered", zap.String("location", v.location), zap.Int("width", c.Width()), zap.Int("height", c.Height()))
	return result{location: v.location, title: v.page.Doc.Title, image: c.Image()}, true
}

func (v *viewer) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.page != nil {
		if err := v.page.Close(); err != nil {
			v.logger.Warn("closing page", zap.Error(err))
		}
		v.page = nil
	}
}

// resizeLayout stretches its objects over the available space and reports
// every new size.
type resizeLayout struct {
	onResize func(fyne.Size)
	last     fyne.Size
}

func (l *resizeLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	for _, o := range objects {
		o.Move(fyne.NewPos(0, 0))
		o.Resize(size)
	}
	if size != l.last {
		l.last = size
		l.onResize(size)
	}
}

func (l *resizeLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(100, 100)
}
