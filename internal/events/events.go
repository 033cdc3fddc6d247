// Package events publishes ledger changes after they commit.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Type is the routing key of an event.
type Type string

const (
	BillCreated  Type = "bill.created"
	SplitPaid    Type = "split.paid"
	FriendAdded  Type = "friend.added"
	GroupCreated Type = "group.created"
	GroupDeleted Type = "group.deleted"
)

// Event is a lightweight notification. Consumers fetch full records by ID.
type Event struct {
	Type    Type   `json:"type"`
	ActorID string `json:"actor_id"`

	// SubjectID is the bill, group or friend the event is about.
	SubjectID string `json:"subject_id"`

	// UserIDs lists every user whose view changed.
	UserIDs []string `json:"user_ids,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// New creates an event stamped with the current time.
func New(typ Type, actorID, subjectID string, userIDs ...string) Event {
	return Event{
		Type:      typ,
		ActorID:   actorID,
		SubjectID: subjectID,
		UserIDs:   userIDs,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event from JSON bytes.
func FromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Publisher delivers events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// FailWith makes every later Publish return err.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many recorded events have the given type.
func (r *Recorder) Count(typ Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}
