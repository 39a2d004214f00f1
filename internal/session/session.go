// Package session drives the per-client acquisition lifecycle:
//
//	Acquisition -> Scanning -> Reviewing -> Resolved
//
// with a manual Acquisition -> Reviewing path and a hard reset back to
// Acquisition from anywhere. The router is the only mutator of session
// state; an epoch counter guards against late scan or scoring results
// landing on a session that has since been reset.
package session

import (
	"time"

	"olea/internal/prediction/models"
	"olea/internal/reconcile"

	"olea/internal/form"
	id "olea/pkg/domain"
)

// State is a lifecycle stage.
type State string

const (
	// StateAcquisition is the entry stage: choosing how to provide data.
	StateAcquisition State = "acquisition"
	// StateScanning means a document scan is in flight.
	StateScanning State = "scanning"
	// StateReviewing means the record is on screen for correction.
	StateReviewing State = "reviewing"
	// StateResolved means a prediction outcome has been committed.
	StateResolved State = "resolved"
)

// Valid reports whether s names a known stage.
func (s State) Valid() bool {
	switch s {
	case StateAcquisition, StateScanning, StateReviewing, StateResolved:
		return true
	}
	return false
}

// Session is the per-client aggregate. Epoch increments on every hard
// reset; results carrying an older epoch are discarded.
type Session struct {
	ID         id.SessionID          `json:"id"`
	State      State                 `json:"state"`
	Epoch      uint64                `json:"epoch"`
	Record     form.Record           `json:"record"`
	Provenance *reconcile.Provenance `json:"provenance,omitempty"`
	Outcome    *models.Outcome       `json:"outcome,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// clone returns a deep-enough copy for handing outside the router's lock.
// Provenance and Outcome are treated as immutable once attached.
func (s *Session) clone() Session {
	out := *s
	out.Record = s.Record.Clone()
	return out
}
