// Package progress provides a lightweight tracker that keeps aggregated
// request counters (submitted, pending, approved, ...) for one approval
// session. The tracker instance lives in the request context - every
// component that receives the context can atomically update the counters via
// the Delta helper without requiring a global registry.

package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the approval
// coordinator. The fields are signed and can be either positive (increment)
// or negative (decrement).
type Delta struct {
	Submitted    int
	Pending      int
	AutoResolved int
	Approved     int
	Rejected     int
	TimedOut     int
	Cancelled    int
}

// Tracker keeps aggregated request counters for one session. It is safe for
// concurrent use.
type Tracker struct {
	// Identification - informative only, filled when the session starts.
	SessionID string
	StartedAt time.Time

	// Counters - modified via Update().
	Submitted    int
	Pending      int
	AutoResolved int
	Approved     int
	Rejected     int
	TimedOut     int
	Cancelled    int

	sync.Mutex
	onChange func(Tracker)
}

// Update applies the supplied delta to the tracker. It is safe to call from
// multiple goroutines. A registered onChange callback is invoked with a copy
// of the updated tracker outside the critical section so that it can perform
// slow operations (JSON encoding, I/O) without blocking the coordinator.
func (t *Tracker) Update(d Delta) {
	if t == nil {
		return
	}

	t.Lock()

	t.Submitted += d.Submitted
	t.Pending += d.Pending
	t.AutoResolved += d.AutoResolved
	t.Approved += d.Approved
	t.Rejected += d.Rejected
	t.TimedOut += d.TimedOut
	t.Cancelled += d.Cancelled

	snapshot := *t
	cb := t.onChange

	t.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (t *Tracker) Snapshot() Tracker {
	if t == nil {
		return Tracker{}
	}
	t.Lock()
	defer t.Unlock()
	return *t
}

// OnChange registers a callback invoked after every successful Update.
// Passing nil disables the callback. Only one callback can be active;
// subsequent calls overwrite the previous value.
func (t *Tracker) OnChange(cb func(Tracker)) {
	if t == nil {
		return
	}
	t.Lock()
	t.onChange = cb
	t.Unlock()
}

// ----------------------------------------------------------------------------
// Context helpers
// ----------------------------------------------------------------------------

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a new Tracker, embeds it in a derived context and
// returns both. The caller may optionally pass an onChange callback invoked
// after every counter update.
func WithNewTracker(ctx context.Context, sessionID string, onChange func(Tracker)) (context.Context, *Tracker) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Tracker{
		SessionID: sessionID,
		StartedAt: time.Now(),
		onChange:  onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the Tracker from ctx. The second return value is
// false when the context carries no tracker.
func FromContext(ctx context.Context) (*Tracker, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Tracker)
	return tr, ok
}

// UpdateCtx looks up the tracker in ctx (if any) and applies the delta.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
