// Package page ties the pieces together: it loads a document, runs its
// scripts, lays it out and paints it onto a canvas.
package page

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"htmlbox/pkg/config"
	"htmlbox/pkg/html"
	"htmlbox/pkg/images"
	"htmlbox/pkg/layout"
	"htmlbox/pkg/render"
	"htmlbox/pkg/resource"
	"htmlbox/pkg/script"
)

// maxCanvasHeight caps full-document renders.
const maxCanvasHeight = 1 << 15

// Renderer creates pages sharing one configuration and font loader.
type Renderer struct {
	cfg    config.Config
	fonts  *render.FontLoader
	logger *zap.Logger
}

func NewRenderer(cfg config.Config, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		cfg:    cfg,
		fonts:  render.NewFontLoader(cfg.Fonts, logger),
		logger: logger,
	}
}

// Fonts returns the shared font loader.
func (r *Renderer) Fonts() *render.FontLoader { return r.fonts }

func (r *Renderer) fetcher(base string) *resource.DefaultFetcher {
	return resource.NewFetcher(resource.Options{
		BaseURL:   base,
		UserAgent: r.cfg.Images.UserAgent,
		Timeout:   r.cfg.Images.HTTPTimeout,
		Rate:      r.cfg.Images.FetchRate,
		Burst:     r.cfg.Images.FetchBurst,
		Logger:    r.logger,
	})
}

// Open loads the document at location, a local path or a URL.
func (r *Renderer) Open(ctx context.Context, location string) (*Page, error) {
	if resource.IsNetworkURL(location) || resource.IsDataURI(location) {
		body, _, err := r.fetcher(location).Fetch(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", location, err)
		}
		return r.Parse(ctx, string(body), location)
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", location, err)
	}
	return r.Parse(ctx, string(body), filepath.Dir(abs))
}

// Parse builds a page from markup. base resolves relative style sheet and
// image references.
func (r *Renderer) Parse(ctx context.Context, markup, base string) (*Page, error) {
	fetcher := r.fetcher(base)
	doc, err := html.ParseString(ctx, markup, html.Options{Fetcher: fetcher, Logger: r.logger})
	if err != nil {
		return nil, err
	}

	if r.cfg.Script.Enabled && len(doc.Scripts) > 0 {
		eng := script.New(script.Options{Timeout: r.cfg.Script.Timeout, Logger: r.logger})
		if err := eng.Execute(ctx, doc); err != nil {
			r.logger.Warn("scripts reported errors", zap.Error(err))
		}
	}

	if fam := r.cfg.Fonts.DefaultFamily; fam != "" {
		if _, ok := doc.Root.DeclaredProperty("font-family"); !ok {
			doc.Root.SetProperty("font-family", fam)
		}
	}

	loader := images.NewLoader(fetcher, images.Options{
		Workers:   r.cfg.Images.Workers,
		QueueSize: r.cfg.Images.QueueSize,
		Logger:    r.logger,
	})

	vw, vh := float64(r.cfg.Viewport.Width), float64(r.cfg.Viewport.Height)
	eng := layout.NewEngine(r.fonts, vw, vh)
	eng.SetLogger(r.logger.Named("layout"))
	eng.SetErrorReporter(layout.NewLogReporter(r.logger.Named("layout")))
	eng.SetImageLoader(loader)
	if r.cfg.Page.Height > 0 {
		eng.SetPageSize(layout.Size{Width: vw, Height: float64(r.cfg.Page.Height)})
		eng.SetMarginTop(r.cfg.Page.MarginTop)
	}
	if err := eng.SetRoot(doc.Root); err != nil {
		_ = loader.Close()
		return nil, err
	}

	return &Page{
		Doc:    doc,
		eng:    eng,
		loader: loader,
		fonts:  r.fonts,
		logger: r.logger,
	}, nil
}

// Page is a loaded document bound to its layout engine.
type Page struct {
	Doc *html.Document

	eng    *layout.Engine
	loader *images.Loader
	fonts  *render.FontLoader
	logger *zap.Logger
}

// Engine returns the page's layout engine.
func (p *Page) Engine() *layout.Engine { return p.eng }

// Layout lays the document out for a viewport and waits until every image
// it started loading has completed or ctx is done.
func (p *Page) Layout(ctx context.Context, width, height int) error {
	p.eng.SetViewport(float64(width), float64(height))
	if pages := p.eng.PageSize(); pages.Height > 0 {
		p.eng.SetPageSize(layout.Size{Width: float64(width), Height: pages.Height})
	}
	g := render.NewCanvas(1, 1, p.fonts, p.logger)
	if err := p.eng.PerformLayout(g); err != nil {
		return err
	}
	return p.waitForImages(ctx, g)
}

func (p *Page) waitForImages(ctx context.Context, g layout.Graphics) error {
	if p.eng.PendingImages() == 0 {
		_, err := p.eng.ProcessEvents(g)
		return err
	}
	for p.eng.PendingImages() > 0 {
		select {
		case req := <-p.eng.Refresh():
			if req.Layout {
				if err := p.eng.PerformLayout(g); err != nil {
					return err
				}
			}
			if _, err := p.eng.ProcessEvents(g); err != nil {
				return err
			}
		case <-ctx.Done():
			return fmt.Errorf("waiting for images: %w", ctx.Err())
		}
	}
	if _, err := p.eng.ProcessEvents(g); err != nil {
		return err
	}
	// A refresh dropped on a full queue would leave stale geometry behind.
	return p.eng.PerformLayout(g)
}

// Render lays the page out at width × height and paints it. A height of
// zero paints the whole document.
func (p *Page) Render(ctx context.Context, width, height int) (*render.Canvas, error) {
	viewport := height
	if viewport <= 0 {
		viewport = int(p.eng.Viewport().Height)
		if viewport <= 0 {
			viewport = width
		}
	}
	if err := p.Layout(ctx, width, viewport); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	} else if err != nil {
		p.logger.Warn("rendering before all images arrived", zap.Error(err))
	}

	if height <= 0 {
		height = int(math.Ceil(p.eng.ActualSize().Height))
		height = min(max(height, 1), maxCanvasHeight)
	}
	c := render.NewCanvas(width, height, p.fonts, p.logger)
	if err := p.eng.Paint(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Close cancels outstanding image loads and releases the tree.
func (p *Page) Close() error {
	p.eng.Dispose()
	return p.loader.Close()
}
