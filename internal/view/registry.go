package view

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/majorcatalog/internal/diagnostic"
)

// Options configures a Registry.
type Options struct {
	// LoadTimeout bounds a single detail load. Zero means no bound.
	LoadTimeout time.Duration
	// TTL is how long an untouched view is kept.
	TTL time.Duration
}

// Registry keeps one DetailView per viewer and evicts idle ones.
type Registry struct {
	loader   Loader
	recorder diagnostic.Recorder
	opts     Options
	log      zerolog.Logger
	now      func() time.Time

	base    context.Context
	stopAll context.CancelFunc

	mu    sync.Mutex
	views map[string]*entry
}

type entry struct {
	view     *DetailView
	lastSeen time.Time
}

func NewRegistry(loader Loader, recorder diagnostic.Recorder, opts Options, log zerolog.Logger) *Registry {
	base, stopAll := context.WithCancel(context.Background())
	return &Registry{
		loader:   loader,
		recorder: recorder,
		opts:     opts,
		log:      log.With().Str("component", "view_registry").Logger(),
		now:      time.Now,
		base:     base,
		stopAll:  stopAll,
		views:    make(map[string]*entry),
	}
}

// Get returns the viewer's view, creating it on first use.
func (r *Registry) Get(viewerID string) *DetailView {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.views[viewerID]
	if !ok {
		e = &entry{view: newDetailView(r.base, viewerID, r.loader, r.recorder, r.opts.LoadTimeout)}
		r.views[viewerID] = e
	}
	e.lastSeen = r.now()
	return e.view
}

// Touch marks the viewer's view as still in use. Unknown viewers are ignored.
func (r *Registry) Touch(viewerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.views[viewerID]; ok {
		e.lastSeen = r.now()
	}
}

// Len returns the number of live views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Sweep closes and removes views not touched within the TTL.
func (r *Registry) Sweep() int {
	if r.opts.TTL <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, e := range r.views {
		if r.now().Sub(e.lastSeen) > r.opts.TTL {
			e.view.Close()
			delete(r.views, id)
			evicted++
		}
	}
	return evicted
}

// Run sweeps periodically until ctx is done, then closes every view.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.log.Debug().Int("evicted", n).Int("live", r.Len()).Msg("Evicted idle views")
			}
		}
	}
}

// Close cancels every view's in-flight load.
func (r *Registry) Close() {
	r.stopAll()
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.views {
		delete(r.views, id)
	}
}

// Done is closed once the registry has been closed.
func (r *Registry) Done() <-chan struct{} {
	return r.base.Done()
}
