package hostapi

import "sync"

// EventType classifies a BroadcastEvent, mirrored from api.EventType and
// trimmed to what this emulator actually has to report: a register/PC
// state change, and an execution event (breakpoint/watchpoint hit, or
// halt-on-error). Frame delivery does not go through the broadcaster —
// it uses the one-slot frameSlot in session.go instead, since frames
// are too large and too frequent to fan out as JSON events.
type EventType string

const (
	EventTypeState     EventType = "state"
	EventTypeExecution EventType = "event"
)

// BroadcastEvent is one fan-out message, grounded on api.BroadcastEvent.
type BroadcastEvent struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"sessionId"`
	Data      map[string]interface{} `json:"data"`
}

// Subscription is one WebSocket client's live filter, grounded on
// api.Subscription.
type Subscription struct {
	SessionID  string
	EventTypes map[EventType]bool
	Channel    chan BroadcastEvent
}

// Broadcaster fans events out to every matching subscription over a
// single internal goroutine, exactly as api.Broadcaster does: a
// register/unregister/broadcast select loop guards the subscription set
// so no subscriber ever needs its own lock.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	broadcast     chan BroadcastEvent
	register      chan *Subscription
	unregister    chan *Subscription
	done          chan struct{}
}

// NewBroadcaster starts a Broadcaster's fan-out goroutine.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
		broadcast:     make(chan BroadcastEvent, 256),
		register:      make(chan *Subscription),
		unregister:    make(chan *Subscription),
		done:          make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub.Channel)
			}
			b.mu.Unlock()

		case event := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				if sub.SessionID != "" && sub.SessionID != event.SessionID {
					continue
				}
				if len(sub.EventTypes) > 0 && !sub.EventTypes[event.Type] {
					continue
				}
				select {
				case sub.Channel <- event:
				default:
					// slow client, drop the event rather than block the broadcaster
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub.Channel)
			}
			b.subscriptions = make(map[*Subscription]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe registers a new filtered subscription.
func (b *Broadcaster) Subscribe(sessionID string, eventTypes []EventType) *Subscription {
	typeSet := make(map[EventType]bool, len(eventTypes))
	for _, et := range eventTypes {
		typeSet[et] = true
	}
	sub := &Subscription{SessionID: sessionID, EventTypes: typeSet, Channel: make(chan BroadcastEvent, 64)}
	b.register <- sub
	return sub
}

// Unsubscribe removes and closes a Subscription.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.unregister <- sub
}

// BroadcastState sends a register/PC state-change event.
func (b *Broadcaster) BroadcastState(sessionID string, data map[string]interface{}) {
	b.send(BroadcastEvent{Type: EventTypeState, SessionID: sessionID, Data: data})
}

// BroadcastExecution sends a breakpoint/watchpoint/halt event.
func (b *Broadcaster) BroadcastExecution(sessionID, name string, details map[string]interface{}) {
	data := map[string]interface{}{"event": name}
	for k, v := range details {
		data[k] = v
	}
	b.send(BroadcastEvent{Type: EventTypeExecution, SessionID: sessionID, Data: data})
}

func (b *Broadcaster) send(event BroadcastEvent) {
	select {
	case b.broadcast <- event:
	default:
		// broadcaster itself is overwhelmed; drop rather than block the caller
	}
}

// Close stops the Broadcaster and closes every live subscription.
func (b *Broadcaster) Close() { close(b.done) }
