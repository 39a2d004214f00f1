package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"olea/internal/extraction"
	"olea/internal/form"
	"olea/internal/prediction/models"
	"olea/internal/reconcile"
	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
	"olea/pkg/platform/audit"
)

// Router owns every live session and serializes all mutation under one
// mutex. Scoring and scanning happen outside the lock; their results come
// back through CompleteScan/FailScan/Resolve with the epoch they started
// under.
type Router struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*Session

	logger *slog.Logger
	audit  audit.Publisher
}

type Option func(*Router)

func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(r *Router) { r.audit = p }
}

func NewRouter(opts ...Option) *Router {
	r := &Router{
		sessions: make(map[id.SessionID]*Session),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create starts a session in Acquisition with an all-default record.
func (r *Router) Create(ctx context.Context) Session {
	now := time.Now()
	sess := &Session{
		ID:        id.NewSessionID(),
		State:     StateAcquisition,
		Record:    form.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "session created", "session_id", sess.ID)
	return sess.clone()
}

// Get returns a copy of the session.
func (r *Router) Get(ctx context.Context, sid id.SessionID) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[sid]
	if !ok {
		return Session{}, dErrors.Newf(dErrors.CodeNotFound, "session %s not found", sid)
	}
	return sess.clone(), nil
}

// Snapshot returns the current record and epoch for starting an attempt
// whose result will be committed later under an epoch check.
func (r *Router) Snapshot(ctx context.Context, sid id.SessionID) (form.Record, uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[sid]
	if !ok {
		return nil, 0, dErrors.Newf(dErrors.CodeNotFound, "session %s not found", sid)
	}
	return sess.Record.Clone(), sess.Epoch, nil
}

// Navigate moves the session to target. Entering Acquisition is the hard
// reset: record, provenance, and outcome are cleared and the epoch bumps so
// in-flight results die on arrival. Entering Reviewing from Acquisition (the
// manual path) starts a fresh record with no provenance.
func (r *Router) Navigate(ctx context.Context, sid id.SessionID, target State) (Session, error) {
	if !target.Valid() {
		return Session{}, dErrors.Newf(dErrors.CodeValidation, "unknown state %q", target)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sid]
	if !ok {
		return Session{}, dErrors.Newf(dErrors.CodeNotFound, "session %s not found", sid)
	}

	if target == StateAcquisition {
		r.reset(ctx, sess)
		return sess.clone(), nil
	}

	if !legalTransition(sess.State, target) {
		return Session{}, dErrors.Newf(dErrors.CodeValidation,
			"cannot navigate from %s to %s", sess.State, target)
	}

	if target == StateReviewing && sess.State == StateAcquisition {
		// Manual entry path: fresh record, nothing scanned.
		sess.Record = form.New()
		sess.Provenance = nil
	}

	sess.State = target
	sess.UpdatedAt = time.Now()
	r.logger.InfoContext(ctx, "session navigated",
		"session_id", sess.ID, "state", sess.State, "epoch", sess.Epoch)
	return sess.clone(), nil
}

// legalTransition covers every move except the always-legal hard reset.
func legalTransition(from, to State) bool {
	switch from {
	case StateAcquisition:
		return to == StateScanning || to == StateReviewing
	case StateScanning:
		return to == StateScanning || to == StateReviewing
	case StateReviewing:
		return to == StateResolved
	case StateResolved:
		return false
	}
	return false
}

// reset is the single discard point. Idempotent: resetting an already
// clean Acquisition session changes nothing but the epoch.
func (r *Router) reset(ctx context.Context, sess *Session) {
	sess.State = StateAcquisition
	sess.Record = form.New()
	sess.Provenance = nil
	sess.Outcome = nil
	sess.Epoch++
	sess.UpdatedAt = time.Now()

	r.logger.InfoContext(ctx, "session hard reset",
		"session_id", sess.ID, "epoch", sess.Epoch)
	audit.LogAudit(ctx, r.logger, r.audit, "session.reset",
		"session_id", sess.ID.String(), "epoch", sess.Epoch)
}

// CompleteScan commits a finished extraction: the result is reconciled onto
// the session's record and the session moves to Reviewing. A stale epoch
// means the session was reset while the scan ran; the result is dropped.
func (r *Router) CompleteScan(ctx context.Context, sid id.SessionID, epoch uint64, res extraction.Result) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sid]
	if !ok {
		return Session{}, dErrors.Newf(dErrors.CodeNotFound, "session %s not found", sid)
	}
	if sess.Epoch != epoch {
		r.logger.WarnContext(ctx, "stale scan result dropped",
			"session_id", sid, "result_epoch", epoch, "session_epoch", sess.Epoch)
		return sess.clone(), nil
	}

	merged, prov := reconcile.Merge(res, sess.Record)
	sess.Record = merged
	sess.Provenance = &prov
	sess.State = StateReviewing
	sess.UpdatedAt = time.Now()

	r.logger.InfoContext(ctx, "scan reconciled",
		"session_id", sid,
		"matched_fields", prov.MatchedCount,
		"confidence", prov.Confidence)
	return sess.clone(), nil
}

// FailScan records a failed scan attempt. The session stays in Scanning so
// the user can retry from the scan screen; record, provenance, and epoch are
// untouched.
func (r *Router) FailScan(ctx context.Context, sid id.SessionID, epoch uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sid]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "session %s not found", sid)
	}
	if sess.Epoch != epoch {
		r.logger.WarnContext(ctx, "stale scan failure dropped",
			"session_id", sid, "result_epoch", epoch, "session_epoch", sess.Epoch)
		return nil
	}
	if sess.State == StateScanning {
		sess.UpdatedAt = time.Now()
		r.logger.InfoContext(ctx, "scan attempt failed", "session_id", sid)
	}
	return nil
}

// UpdateField applies one manual correction while the record is under
// review.
func (r *Router) UpdateField(ctx context.Context, sid id.SessionID, field form.Field, value any) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sid]
	if !ok {
		return Session{}, dErrors.Newf(dErrors.CodeNotFound, "session %s not found", sid)
	}
	if sess.State != StateReviewing {
		return Session{}, dErrors.Newf(dErrors.CodeValidation,
			"cannot edit fields in state %s", sess.State)
	}

	if _, known := form.SpecOf(field); !known {
		return Session{}, dErrors.Newf(dErrors.CodeValidation, "unknown field %q", field)
	}
	if err := sess.Record.Set(field, form.Coerce(field, value)); err != nil {
		return Session{}, err
	}
	sess.UpdatedAt = time.Now()
	return sess.clone(), nil
}

// Resolve commits a prediction outcome and moves the session to Resolved.
// A stale epoch drops the outcome silently: the session was reset while
// scoring ran and the result no longer describes its record.
func (r *Router) Resolve(ctx context.Context, sid id.SessionID, epoch uint64, outcome *models.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sid]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "session %s not found", sid)
	}
	if sess.Epoch != epoch {
		r.logger.WarnContext(ctx, "stale prediction outcome dropped",
			"session_id", sid, "result_epoch", epoch, "session_epoch", sess.Epoch)
		return nil
	}
	if sess.State != StateReviewing {
		return dErrors.Newf(dErrors.CodeValidation,
			"cannot resolve session in state %s", sess.State)
	}

	sess.Outcome = outcome
	sess.State = StateResolved
	sess.UpdatedAt = time.Now()

	r.logger.InfoContext(ctx, "session resolved",
		"session_id", sid, "bundle", outcome.Result.Bundle)
	return nil
}
