package rounddomain

import (
	"time"

	"github.com/google/uuid"
)

// EventKind names a committed round change. The value doubles as the event
// bus topic.
type EventKind string

const (
	EventJoined     EventKind = "round.joined.v1"
	EventAllocated  EventKind = "round.allocated.v1"
	EventStarted    EventKind = "round.started.v1"
	EventTerminated EventKind = "round.terminated.v1"
	EventCompleted  EventKind = "round.completed.v1"
)

// EventKinds lists every kind in lifecycle order.
var EventKinds = []EventKind{EventJoined, EventAllocated, EventStarted, EventTerminated, EventCompleted}

// RoundEvent is emitted once the transaction that caused it has committed.
//
// Allocations carries the allocation created by a join, the set written by an
// allocation, and every allocation of the round for the other kinds. ID stays
// the same across redeliveries of the event.
type RoundEvent struct {
	ID          uuid.UUID    `json:"id"`
	Kind        EventKind    `json:"kind"`
	Round       Round        `json:"round"`
	ActorID     uuid.UUID    `json:"actor_id"`
	Allocations []Allocation `json:"allocations"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

// Participants returns the distinct user ids in Allocations, in first-seen order.
func (e RoundEvent) Participants() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(e.Allocations))
	out := make([]uuid.UUID, 0, len(e.Allocations))
	for _, a := range e.Allocations {
		if _, ok := seen[a.UserID]; ok {
			continue
		}
		seen[a.UserID] = struct{}{}
		out = append(out, a.UserID)
	}
	return out
}
