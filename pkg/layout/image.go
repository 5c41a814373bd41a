package layout

import (
	"context"
	"image"
	"sync"

	"go.uber.org/zap"

	"htmlbox/pkg/css"
)

// ImageLoader fetches and decodes images away from the layout goroutine.
// done is called exactly once unless ctx is cancelled first; it may run on
// any goroutine.
type ImageLoader interface {
	Load(ctx context.Context, src string, done func(image.Image, error))
}

// imageState is the part of an image box that load completions may touch.
// mu is shared with Dispose.
type imageState struct {
	mu       sync.Mutex
	word     *Word
	img      image.Image
	started  bool
	complete bool
	failed   bool
	disposed bool
	cancel   context.CancelFunc

	errorBorder bool
}

const (
	frameDefaultWidth  = 300
	frameDefaultHeight = 150
)

func (b *Box) initImage() {
	b.image = &imageState{word: newImageWord(b)}
	b.Words = []*Word{b.image.word}
}

// ImageLoaded reports whether the image finished loading, and whether it failed.
func (b *Box) ImageLoaded() (complete, failed bool) {
	if b.image == nil {
		return false, false
	}
	b.image.mu.Lock()
	defer b.image.mu.Unlock()
	return b.image.complete, b.image.failed
}

// ImagePending reports whether a load was handed to the loader and has not
// completed yet.
func (b *Box) ImagePending() bool {
	if b.image == nil {
		return false
	}
	b.image.mu.Lock()
	defer b.image.mu.Unlock()
	return b.image.started && !b.image.complete && !b.image.disposed
}

// startImageLoad hands the src attribute to the engine's loader once. The
// completion asks the engine for a refresh and stores the result under the
// state lock; it never touches layout state.
func (b *Box) startImageLoad() {
	st := b.image
	eng := b.eng
	if st == nil || b.Kind != KindImage || eng == nil || eng.loader == nil {
		return
	}
	src, _ := b.Attr("src")
	if src == "" {
		return
	}

	st.mu.Lock()
	if st.started || st.disposed {
		st.mu.Unlock()
		return
	}
	st.started = true
	ctx, cancel := context.WithCancel(eng.ctx)
	st.cancel = cancel
	st.mu.Unlock()

	requests := eng.refresh
	logger := eng.logger
	relayout := !b.hasPixelSize()
	eng.loader.Load(ctx, src, func(img image.Image, err error) {
		st.mu.Lock()
		if st.disposed {
			st.mu.Unlock()
			return
		}
		// The request is queued before the load counts as complete, so a
		// host that sees no pending images also sees the refresh.
		select {
		case requests <- RefreshRequest{Layout: relayout}:
		default:
		}
		st.img = img
		st.complete = true
		st.failed = err != nil || img == nil
		st.mu.Unlock()
		cancel()

		if err != nil {
			logger.Debug("image load failed", zap.String("src", src), zap.Error(err))
		}
	})
}

// hasPixelSize reports both width and height declared in pixels, in which
// case a late image changes nothing but pixels.
func (b *Box) hasPixelSize() bool {
	w, okW := css.ParseLength(b.Property("width"))
	h, okH := css.ParseLength(b.Property("height"))
	isPx := func(l css.Length) bool { return l.Unit == css.UnitPx || l.Unit == css.UnitNone }
	return okW && okH && w.Number > 0 && h.Number > 0 && isPx(w) && isPx(h)
}

// measureImageSize sizes the image word from the declared size, the
// decoded image and max-width, keeping the aspect ratio when only one
// dimension is given.
func (b *Box) measureImageSize() {
	st := b.image
	b.startImageLoad()

	st.mu.Lock()
	img := st.img
	failed := st.failed
	st.mu.Unlock()

	if failed && !st.errorBorder {
		st.errorBorder = true
		b.SetProperty("border", "2px solid #a0a0a0")
		b.SetProperty("border-right-color", "#e3e3e3")
		b.SetProperty("border-bottom-color", "#e3e3e3")
	}

	w := st.word
	w.Image = img

	cbWidth := b.ContainingBlock().Size.Width
	width, okW := css.ParseLength(b.Property("width"))
	height, okH := css.ParseLength(b.Property("height"))
	isPx := func(l css.Length) bool { return l.Unit == css.UnitPx || l.Unit == css.UnitNone }
	hasWidth := okW && width.Number > 0 && isPx(width)
	hasHeight := okH && height.Number > 0 && isPx(height)
	scaleHeight := false

	var imgW, imgH float64
	if img != nil {
		bounds := img.Bounds()
		imgW, imgH = float64(bounds.Dx()), float64(bounds.Dy())
	}

	switch {
	case hasWidth:
		w.Width = width.Number
	case okW && width.Number > 0 && width.IsPercent():
		w.Width = width.Number / 100 * cbWidth
		scaleHeight = true
	case img != nil:
		w.Width = imgW
	case b.Kind == KindFrame:
		w.Width = frameDefaultWidth
	case hasHeight:
		w.Width = height.Number / 1.14
	default:
		w.Width = 20
	}

	if mw, ok := css.ParseLength(b.Property("max-width")); ok && mw.Number > 0 {
		limit := -1.0
		if isPx(mw) {
			limit = mw.Number
		} else if mw.IsPercent() {
			limit = mw.Number / 100 * cbWidth
		}
		if limit > -1 && w.Width > limit {
			w.Width = limit
			scaleHeight = !hasHeight
		}
	}

	switch {
	case hasHeight:
		w.Height = height.Number
	case img != nil:
		w.Height = imgH
	case b.Kind == KindFrame && !hasWidth:
		w.Height = frameDefaultHeight
	case w.Width > 0:
		w.Height = w.Width * 1.14
	default:
		w.Height = 22.8
	}

	if img != nil && imgW > 0 && imgH > 0 {
		if (hasWidth && !hasHeight) || scaleHeight {
			w.Height = imgH * (w.Width / imgW)
		} else if hasHeight && !hasWidth {
			w.Width = imgW * (w.Height / imgH)
		}
	}

	w.Height += b.ActualBorderTopWidth() + b.ActualBorderBottomWidth() +
		b.ActualPaddingTop() + b.ActualPaddingBottom()
}

func (st *imageState) dispose() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.disposed = true
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	st.img = nil
}
