package core

import "time"

// Phase is a room's lifecycle stage. No transition leaves PhaseFinished.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePlaying
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Room is one duel session. Members keeps join order, host first.
// A room never exists with zero members: it is destroyed, not emptied,
// when the host leaves.
type Room struct {
	ID         string
	HostID     string
	Phase      Phase
	StartedAt  time.Time // zero until PhasePlaying
	Members    []*PlayerRecord
	LastActive time.Time
}

// Member returns the record owned by connID, or nil.
func (r *Room) Member(connID string) *PlayerRecord {
	for _, m := range r.Members {
		if m.ConnID == connID {
			return m
		}
	}
	return nil
}

// removeMember drops connID from Members. Returns true if it was present.
func (r *Room) removeMember(connID string) bool {
	for i, m := range r.Members {
		if m.ConnID == connID {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return true
		}
	}
	return false
}

// Roster returns a copy of the member records in join order.
func (r *Room) Roster() []PlayerRecord {
	roster := make([]PlayerRecord, 0, len(r.Members))
	for _, m := range r.Members {
		roster = append(roster, *m)
	}
	return roster
}
