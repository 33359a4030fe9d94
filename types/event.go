// SPDX-License-Identifier: MIT

package types

import "sync"

// EventKind discriminates emitted event records.
type EventKind string

const (
	EventAssignmentSettled EventKind = "AssignmentSettled"
	EventClaimed           EventKind = "Claimed"
)

// AssignmentSettledEvent is emitted after a settlement fully commits.
// It carries the block metadata and the full assignment record.
type AssignmentSettledEvent struct {
	Prover     Address    `json:"prover"`
	MetaHash   Hash       `json:"metaHash"`
	BlockID    uint64     `json:"blockId"`
	Assignment Assignment `json:"assignment"`
}

// ClaimedEvent is emitted after a one-time claim is consumed.
type ClaimedEvent struct {
	Hash Hash `json:"hash"`
}

// Event is a tagged union of emitted records.
type Event struct {
	Kind       EventKind               `json:"kind"`
	Settlement *AssignmentSettledEvent `json:"settlement,omitempty"`
	Claim      *ClaimedEvent           `json:"claim,omitempty"`
}

// EventSink collects events emitted by the engines. Emission happens
// only after all effects of the enclosing call have succeeded.
type EventSink interface {
	Emit(ev Event)
}

// MemorySink is an in-memory EventSink.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a copy of everything emitted so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
