// Package view holds the per-viewer state of the major detail page.
package view

import (
	"context"
	"sync"
	"time"

	"github.com/stemsi/majorcatalog/internal/diagnostic"
	"github.com/stemsi/majorcatalog/internal/model"
)

// Loader performs one detail load.
type Loader interface {
	Load(ctx context.Context, id string) model.DetailResult
}

const recordTimeout = 2 * time.Second

// DetailView is the state machine behind one viewer's detail page:
// idle -> loading -> populated | not_found | unavailable.
//
// Only the load started by the latest Navigate may write state; starting a
// load for another id cancels the one in flight.
type DetailView struct {
	viewerID string
	loader   Loader
	recorder diagnostic.Recorder
	timeout  time.Duration
	now      func() time.Time

	base      context.Context
	closeBase context.CancelFunc

	mu      sync.Mutex
	state   model.DetailState
	gen     uint64
	cancel  context.CancelFunc
	settled chan struct{}
	changed chan struct{}
}

func newDetailView(parent context.Context, viewerID string, loader Loader, recorder diagnostic.Recorder, timeout time.Duration) *DetailView {
	base, closeBase := context.WithCancel(parent)
	settled := make(chan struct{})
	close(settled)
	return &DetailView{
		viewerID:  viewerID,
		loader:    loader,
		recorder:  recorder,
		timeout:   timeout,
		now:       time.Now,
		base:      base,
		closeBase: closeBase,
		state:     model.DetailState{Status: model.StatusIdle},
		settled:   settled,
		changed:   make(chan struct{}),
	}
}

// Navigate points the view at id and returns a channel closed when the
// resulting load settles. A load already in flight for the same id is
// joined rather than restarted.
func (v *DetailView) Navigate(id string) <-chan struct{} {
	v.mu.Lock()
	if v.state.MajorID == id && v.state.Status == model.StatusLoading {
		settled := v.settled
		v.mu.Unlock()
		return settled
	}

	if v.cancel != nil {
		v.cancel()
	}
	v.gen++
	gen := v.gen

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if v.timeout > 0 {
		ctx, cancel = context.WithTimeout(v.base, v.timeout)
	} else {
		ctx, cancel = context.WithCancel(v.base)
	}
	settled := make(chan struct{})
	v.cancel = cancel
	v.settled = settled
	v.state = model.DetailState{
		MajorID:   id,
		Status:    model.StatusLoading,
		Loading:   true,
		UpdatedAt: v.now(),
	}
	v.notifyLocked()
	v.mu.Unlock()

	go v.run(ctx, cancel, gen, id, settled)
	return settled
}

func (v *DetailView) run(ctx context.Context, cancel context.CancelFunc, gen uint64, id string, settled chan struct{}) {
	defer close(settled)
	defer cancel()

	start := v.now()
	result := v.loader.Load(ctx, id)
	finished := v.now()

	v.mu.Lock()
	current := gen == v.gen
	if current {
		v.state = model.DetailState{
			MajorID:   id,
			Status:    model.ViewStatus(result.Outcome),
			Loading:   false,
			Major:     result.Major,
			Related:   result.Related,
			UpdatedAt: finished,
		}
		v.cancel = nil
		v.notifyLocked()
	}
	v.mu.Unlock()

	if v.recorder == nil {
		return
	}
	rec := model.LoadRecord{
		MajorID:      id,
		ViewerID:     v.viewerID,
		Outcome:      result.Outcome,
		RelatedCount: len(result.Related),
		DurationMS:   finished.Sub(start).Milliseconds(),
		RecordedAt:   finished.UTC(),
	}
	if !current {
		rec.Outcome = model.OutcomeCancelled
	}
	if result.Err != nil {
		rec.Error = result.Err.Error()
	} else if result.RelatedErr != nil {
		rec.Error = result.RelatedErr.Error()
	}
	recCtx, recCancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer recCancel()
	v.recorder.Record(recCtx, rec)
}

// Snapshot returns a copy of the current state.
func (v *DetailView) Snapshot() model.DetailState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	if s.Related != nil {
		s.Related = append([]model.Major(nil), s.Related...)
	}
	return s
}

// Settled returns a channel closed once the current load has settled.
func (v *DetailView) Settled() <-chan struct{} {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.settled
}

// Changes returns a channel closed on the next state change.
func (v *DetailView) Changes() <-chan struct{} {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.changed
}

// Close cancels any load in flight. The view must not be used afterwards.
func (v *DetailView) Close() {
	v.closeBase()
}

func (v *DetailView) notifyLocked() {
	close(v.changed)
	v.changed = make(chan struct{})
}
