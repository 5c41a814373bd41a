package images

import (
	"context"
	"errors"
	"image"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"htmlbox/pkg/layout"
	"htmlbox/pkg/resource"
)

var _ layout.ImageLoader = (*Loader)(nil)

var (
	// ErrQueueFull is passed to a completion when the loader is saturated.
	ErrQueueFull = errors.New("image queue full")
	// ErrClosed is passed to a completion when the loader has been closed.
	ErrClosed = errors.New("image loader closed")
)

// Options configures a Loader.
type Options struct {
	Workers   int
	QueueSize int
	Logger    *zap.Logger
}

type job struct {
	ctx  context.Context
	src  string
	done func(image.Image, error)
}

// Loader fetches and decodes images on a bounded pool of goroutines. It
// satisfies layout.ImageLoader.
type Loader struct {
	fetcher resource.Fetcher
	cache   *Cache
	logger  *zap.Logger

	jobs   chan job
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	closed     bool
	dispatched chan struct{}
}

// NewLoader starts a loader that fetches through fetcher.
func NewLoader(fetcher resource.Fetcher, opts Options) *Loader {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	queue := opts.QueueSize
	if queue <= 0 {
		queue = 64
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	g := new(errgroup.Group)
	g.SetLimit(workers)

	l := &Loader{
		fetcher:    fetcher,
		cache:      NewCache(),
		logger:     logger.Named("images"),
		jobs:       make(chan job, queue),
		group:      g,
		ctx:        ctx,
		cancel:     cancel,
		dispatched: make(chan struct{}),
	}
	go l.dispatch()
	return l
}

// Cache exposes the loader's decoded image cache.
func (l *Loader) Cache() *Cache { return l.cache }

// Load queues src. done runs exactly once, on a worker goroutine or
// synchronously for cached images and rejected requests, unless ctx is
// cancelled before the image is ready.
func (l *Loader) Load(ctx context.Context, src string, done func(image.Image, error)) {
	if ctx.Err() != nil {
		return
	}
	if img, ok := l.cache.Get(src); ok {
		done(img, nil)
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		done(nil, ErrClosed)
		return
	}
	select {
	case l.jobs <- job{ctx: ctx, src: src, done: done}:
		l.mu.Unlock()
	default:
		l.mu.Unlock()
		l.logger.Warn("image queue full, dropping request", zap.String("src", src))
		done(nil, ErrQueueFull)
	}
}

// dispatch hands queued jobs to the group, blocking while all workers are
// busy.
func (l *Loader) dispatch() {
	defer close(l.dispatched)
	for j := range l.jobs {
		l.group.Go(func() error {
			l.process(j)
			return nil
		})
	}
}

func (l *Loader) process(j job) {
	ctx, cancel := context.WithCancel(j.ctx)
	defer cancel()
	stop := context.AfterFunc(l.ctx, cancel)
	defer stop()

	if ctx.Err() != nil || l.ctx.Err() != nil {
		return
	}
	if img, ok := l.cache.Get(j.src); ok {
		j.done(img, nil)
		return
	}

	data, _, err := l.fetcher.Fetch(ctx, j.src)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		l.logger.Debug("fetch failed", zap.String("src", j.src), zap.Error(err))
		j.done(nil, err)
		return
	}
	img, err := Decode(data)
	if err != nil {
		l.logger.Debug("decode failed", zap.String("src", j.src), zap.Error(err))
		j.done(nil, err)
		return
	}
	l.cache.Put(j.src, img)
	j.done(img, nil)
}

// Close stops accepting work, cancels in-flight loads and waits for every
// worker to return. Completions of cancelled loads are not called.
func (l *Loader) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.jobs)
	l.mu.Unlock()

	l.cancel()
	<-l.dispatched
	return l.group.Wait()
}
