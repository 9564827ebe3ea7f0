package agent

import (
	"context"

	"github.com/google/uuid"
)

// Invocation is one in-flight agent call. Events delivers the ordered stream;
// Cancel aborts the underlying call. After a terminal event (or Cancel) the
// channel closes and no further events arrive.
type Invocation struct {
	ID     uuid.UUID
	Events <-chan Event

	cancel context.CancelFunc
}

// Cancel aborts the invocation. Safe to call more than once and after the
// stream has ended. No terminal event is emitted for a cancelled invocation.
func (inv *Invocation) Cancel() {
	inv.cancel()
}

// Pipeline turns Client invocations into streams with hard delivery
// guarantees: exactly one Complete or Error ends every un-cancelled stream,
// events are forwarded in production order without buffering or reordering,
// and nothing is emitted after cancellation.
type Pipeline struct {
	client Client
}

// NewPipeline creates a Pipeline over the given client.
func NewPipeline(client Client) *Pipeline {
	return &Pipeline{client: client}
}

// Invoke starts one invocation. It never fails synchronously: request or
// backend errors surface as a single terminal Error event on the stream.
func (p *Pipeline) Invoke(ctx context.Context, req Request) *Invocation {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Event)

	inv := &Invocation{
		ID:     uuid.New(),
		Events: out,
		cancel: cancel,
	}

	go p.pump(ctx, cancel, req, out)
	return inv
}

// pump forwards client events to out, enforcing the stream guarantees.
func (p *Pipeline) pump(ctx context.Context, cancel context.CancelFunc, req Request, out chan<- Event) {
	defer close(out)
	// Releases the client call once the stream is settled, whether by
	// terminal event, cancellation, or consumer abandonment.
	defer cancel()

	src, err := p.client.Invoke(ctx, req)
	if err != nil {
		emit(ctx, out, Error{Message: err.Error()})
		return
	}

	for ev := range src {
		if ctx.Err() != nil {
			return
		}
		if !emit(ctx, out, ev) {
			return
		}
		if ev.Terminal() {
			return
		}
	}

	// The client stream closed without a terminal event. A cancelled
	// invocation ends silently; anything else gets the missing terminal.
	if ctx.Err() == nil {
		emit(ctx, out, Error{Message: "agent stream ended without a result"})
	}
}

// emit sends ev unless the invocation is cancelled first.
func emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
