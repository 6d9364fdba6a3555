package server

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/html2deck/pkg/extract"
	"github.com/matzehuels/html2deck/pkg/pipeline"
)

// pool bounds concurrent conversions and reuses rendering sessions across
// requests. Sessions are started on demand, so a server that only serves
// cached decks never launches a browser.
type pool struct {
	newSurface pipeline.SurfaceFactory
	logger     *log.Logger
	slots      chan struct{}

	mu     sync.Mutex
	idle   []extract.Surface
	closed bool
}

func newPool(size int, newSurface pipeline.SurfaceFactory, logger *log.Logger) *pool {
	return &pool{
		newSurface: newSurface,
		logger:     logger,
		slots:      make(chan struct{}, max(size, 1)),
	}
}

// lease is one slot. Its source hands out at most one surface, which goes
// back to the pool on release unless the conversion broke it.
type lease struct {
	p       *pool
	surface extract.Surface
}

func (p *pool) acquire(ctx context.Context) (*lease, error) {
	select {
	case p.slots <- struct{}{}:
		return &lease{p: p}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *lease) source(ctx context.Context) (extract.Surface, error) {
	if l.surface != nil {
		return l.surface, nil
	}
	p := l.p
	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		l.surface = p.idle[n-1]
		p.idle = p.idle[:n-1]
	}
	p.mu.Unlock()
	if l.surface != nil {
		return l.surface, nil
	}

	s, err := p.newSurface(ctx, p.logger)
	if err != nil {
		return nil, err
	}
	l.surface = s
	return s, nil
}

// release frees the slot. A broken surface is closed instead of reused.
func (l *lease) release(broken bool) {
	p := l.p
	if s := l.surface; s != nil {
		p.mu.Lock()
		keep := !broken && !p.closed
		if keep {
			p.idle = append(p.idle, s)
		}
		p.mu.Unlock()
		if !keep {
			if err := s.Close(); err != nil {
				p.logger.Debug("close rendering session", "err", err)
			}
		}
	}
	<-p.slots
}

// Close shuts down idle sessions. Sessions still leased are closed when
// they are released.
func (p *pool) Close() error {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.closed = true
	p.mu.Unlock()

	var first error
	for _, s := range idle {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (p *pool) idleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
