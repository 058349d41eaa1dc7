package approval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/signoffhq/signoff/service/messaging"
)

// DecisionFunc decides what to do with a pending request.
// Return (true,  "") to approve
//
//	(false, "…") to reject with reason.
type DecisionFunc func(r *Request) (approved bool, reason string)

// watchers holds one dispatcher per coordinator, started on first wait. The
// dispatcher is the sole queue consumer and fans events out per request id,
// so concurrent waiters never consume each other's responses.
var watchers sync.Map // Service -> *watcher

type waitResult struct {
	response *Response
	err      error
}

// deliveredBacklog bounds results kept for waiters that register late.
const deliveredBacklog = 128

type watcher struct {
	mu        sync.Mutex
	waiters   map[string]chan waitResult
	delivered map[string]waitResult
}

func watcherFor(svc Service) *watcher {
	created := &watcher{
		waiters:   map[string]chan waitResult{},
		delivered: map[string]waitResult{},
	}
	actual, loaded := watchers.LoadOrStore(svc, created)
	ret := actual.(*watcher)
	if !loaded {
		go ret.run(svc.Queue())
	}
	return ret
}

func (w *watcher) run(queue messaging.Queue[Event]) {
	ctx := context.Background()
	for {
		msg, err := queue.Consume(ctx)
		if err != nil {
			return
		}
		if msg == nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		event := msg.T()
		_ = msg.Ack()
		switch event.Topic {
		case TopicRequestResponded, TopicRequestTimedOut:
			if response, ok := event.Data.(*Response); ok {
				w.deliver(response.RequestID, waitResult{response: response})
			}
		case TopicRequestCancelled:
			if request, ok := event.Data.(*Request); ok {
				w.deliver(request.ID, waitResult{err: fmt.Errorf("request %s cancelled", request.ID)})
			}
		}
	}
}

func (w *watcher) deliver(id string, result waitResult) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ch, ok := w.waiters[id]; ok {
		select {
		case ch <- result:
		default:
		}
		return
	}
	if len(w.delivered) >= deliveredBacklog {
		for stale := range w.delivered {
			delete(w.delivered, stale)
			break
		}
	}
	w.delivered[id] = result
}

// await registers a buffered result channel for the request id; a result that
// arrived before registration is handed over immediately.
func (w *watcher) await(id string) <-chan waitResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan waitResult, 1)
	if result, ok := w.delivered[id]; ok {
		delete(w.delivered, id)
		ch <- result
		return ch
	}
	w.waiters[id] = ch
	return ch
}

func (w *watcher) forget(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.waiters, id)
}

// WaitForResponse blocks until a response for the given request id is
// published on the service queue, the request times out server-side, or the
// supplied timeout elapses. This is the suspension point of the workflow:
// each caller parks on its own per-request channel while other requests keep
// flowing.
func WaitForResponse(ctx context.Context, svc Service, id string, timeout time.Duration) (*Response, error) {
	if timeout <= 0 {
		timeout = time.Minute
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	w := watcherFor(svc)
	ch := w.await(id)
	defer w.forget(id)

	select {
	case result := <-ch:
		if result.err != nil {
			return nil, result.err
		}
		return result.response, nil
	case <-waitCtx.Done():
		return nil, fmt.Errorf("waiting for response to %s: %w", id, waitCtx.Err())
	}
}

// AutoDecider starts a goroutine that polls ListPending and applies fn to
// every request. It returns stop() - call it (or cancel ctx) to exit.
func AutoDecider(ctx context.Context, svc Service, fn DecisionFunc, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				requests, _ := svc.ListPending(ctx)
				for _, r := range requests {
					ok, reason := fn(r)
					action := ActionApprove
					if !ok {
						action = ActionReject
					}
					_, _ = svc.Respond(ctx, r.ID, &Response{Action: action, Approved: ok, Comment: reason})
				}
			}
		}
	}()
	return func() { close(done) }
}

// AutoApprove automatically approves all pending requests.
func AutoApprove(ctx context.Context, svc Service, interval time.Duration) func() {
	return AutoDecider(ctx, svc,
		func(*Request) (bool, string) { return true, "" }, interval)
}

// AutoReject automatically rejects all pending requests with the given reason.
func AutoReject(ctx context.Context, svc Service, reason string, interval time.Duration) func() {
	return AutoDecider(ctx, svc,
		func(*Request) (bool, string) { return false, reason }, interval)
}

// AutoExpire rejects pending requests whose ExpiresAt deadline passed.
// Requests without a deadline, or not yet expired, are left for a human.
func AutoExpire(ctx context.Context, svc Service, reason string, interval time.Duration) func() {
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				requests, _ := svc.ListPending(ctx)
				for _, r := range requests {
					if r.ExpiresAt == nil || time.Now().Before(*r.ExpiresAt) {
						continue
					}
					_, _ = svc.Respond(ctx, r.ID, &Response{Action: ActionReject, Approved: false, Comment: reason})
				}
			}
		}
	}()
	return func() { close(done) }
}
