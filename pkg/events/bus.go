// Package events implements the single-producer/single-consumer event
// bus the turn loop uses to notify the UI of state changes, and the
// one-shot approval-response channel registry used to carry the user's
// decision on a permission prompt back into the loop.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// Kind identifies an event's payload shape. The UI must ignore unknown
// kinds rather than error, so that older clients stay compatible with a
// server that has grown new event types.
type Kind string

const (
	KindTurnStateChanged       Kind = "turn_state_changed"
	KindAssistantMessage       Kind = "assistant_message"
	KindToolPermissionRequest  Kind = "tool_permission_request"
	KindToolStarted            Kind = "tool_started"
	KindToolCompleted          Kind = "tool_completed"
	KindReminderInjected       Kind = "reminder_injected"
	KindCascadeEscalated       Kind = "cascade_escalated"
	KindError                  Kind = "error"
	KindCancelled              Kind = "cancelled"
)

// Event is one message on the bus.
type Event struct {
	Kind    Kind
	Payload any
}

// ToolPermissionRequest is the payload of a KindToolPermissionRequest
// event: the executor is blocked waiting for a decision on RequestID.
type ToolPermissionRequest struct {
	RequestID string
	ToolName  string
	Input     map[string]any
	Suggested string // e.g. a persistent-grant pattern like "Bash(git *)"
}

// ApprovalDecision is the user's answer to a ToolPermissionRequest.
type ApprovalDecision struct {
	Approved   bool
	RememberAs string // non-empty if the user chose to persist this as a rule
}

// Bus is an unbounded, ordered, single-producer/single-consumer event
// queue. Producer order is preserved on the consumer side.
type Bus struct {
	mu     sync.Mutex
	queue  []Event
	signal chan struct{}
	closed bool
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{signal: make(chan struct{}, 1)}
}

// Publish appends an event to the queue and wakes a blocked Next call.
func (b *Bus) Publish(kind Kind, payload any) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, Event{Kind: kind, Payload: payload})
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Next blocks until an event is available, then returns it in FIFO
// order. ok is false if the bus has been closed and drained.
func (b *Bus) Next() (Event, bool) {
	for {
		b.mu.Lock()
		if len(b.queue) > 0 {
			ev := b.queue[0]
			b.queue = b.queue[1:]
			b.mu.Unlock()
			return ev, true
		}
		closed := b.closed
		b.mu.Unlock()
		if closed {
			return Event{}, false
		}
		<-b.signal
	}
}

// Close marks the bus closed; any events already queued can still be
// drained via Next, but Publish after Close is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// ApprovalRegistry hands out one-shot channels keyed by request ID, so
// the tool executor can publish a ToolPermissionRequest and then block on
// exactly the response meant for it, even if multiple requests are
// in flight (they never are concurrently in this design, but the
// request_id keying keeps the contract explicit).
type ApprovalRegistry struct {
	mu       sync.Mutex
	pending  map[string]chan ApprovalDecision
}

// NewApprovalRegistry returns an empty registry.
func NewApprovalRegistry() *ApprovalRegistry {
	return &ApprovalRegistry{pending: make(map[string]chan ApprovalDecision)}
}

// Register creates a new one-shot channel under a freshly generated
// request ID and returns both the ID and the channel to block on.
func (r *ApprovalRegistry) Register() (requestID string, ch chan ApprovalDecision) {
	requestID = uuid.NewString()
	ch = make(chan ApprovalDecision, 1)
	r.mu.Lock()
	r.pending[requestID] = ch
	r.mu.Unlock()
	return requestID, ch
}

// Resolve delivers decision to the channel registered under requestID, if
// any, and removes it from the registry. Returns false if requestID is
// unknown (e.g. already resolved, or the loop was cancelled first).
func (r *ApprovalRegistry) Resolve(requestID string, decision ApprovalDecision) bool {
	r.mu.Lock()
	ch, ok := r.pending[requestID]
	if ok {
		delete(r.pending, requestID)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	ch <- decision
	return true
}

// CancelAll rejects every pending approval request, used when the turn
// loop is cancelled while a prompt is outstanding.
func (r *ApprovalRegistry) CancelAll() {
	r.mu.Lock()
	pending := r.pending
	r.pending = make(map[string]chan ApprovalDecision)
	r.mu.Unlock()

	for _, ch := range pending {
		ch <- ApprovalDecision{Approved: false}
	}
}
