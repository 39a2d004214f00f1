// Package prediction orchestrates scoring: feature vector -> cache ->
// scoring model -> explanation -> persisted outcome. Scoring failures are
// fatal and surface unchanged; explanation failures degrade to an outcome
// without interpretability.
package prediction

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"olea/internal/features"
	"olea/internal/form"
	"olea/internal/prediction/models"
	id "olea/pkg/domain"
	"olea/pkg/platform/audit"
)

// Scorer produces a recommendation and the model version that made it.
type Scorer interface {
	Score(ctx context.Context, vec features.Vector) (models.Result, string, error)
}

// Explainer produces the interpretability payload for a recommendation.
type Explainer interface {
	Explain(ctx context.Context, vec features.Vector, result models.Result) (*models.Explanation, error)
}

// Store persists completed outcomes.
type Store interface {
	Create(ctx context.Context, outcome *models.Outcome) error
	Get(ctx context.Context, pid id.PredictionID) (*models.Outcome, error)
}

// ResultCache memoizes scoring results by feature vector.
type ResultCache interface {
	Get(ctx context.Context, vec features.Vector) (models.Result, string, bool)
	Set(ctx context.Context, vec features.Vector, result models.Result, modelVersion string)
}

// Sessions is the slice of the session router the orchestrator needs: a
// record snapshot to score and an epoch-guarded commit.
type Sessions interface {
	Snapshot(ctx context.Context, sid id.SessionID) (form.Record, uint64, error)
	Resolve(ctx context.Context, sid id.SessionID, epoch uint64, outcome *models.Outcome) error
}

// Metrics counts pipeline outcomes.
type Metrics interface {
	IncrementPredictions(outcome string)
	CacheHit()
	CacheMiss()
	ExplanationFailed()
	ObserveScoring(seconds float64)
}

// Orchestrator runs the scoring pipeline.
type Orchestrator struct {
	scorer    Scorer
	explainer Explainer
	store     Store
	cache     ResultCache
	sessions  Sessions
	metrics   Metrics
	logger    *slog.Logger
	audit     audit.Publisher
	tracer    trace.Tracer
	now       func() time.Time
}

type Option func(*Orchestrator)

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(o *Orchestrator) { o.audit = p }
}

func WithCache(c ResultCache) Option {
	return func(o *Orchestrator) { o.cache = c }
}

func WithSessions(s Sessions) Option {
	return func(o *Orchestrator) { o.sessions = s }
}

func WithMetrics(m Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func NewOrchestrator(scorer Scorer, explainer Explainer, store Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		scorer:    scorer,
		explainer: explainer,
		store:     store,
		logger:    slog.Default(),
		tracer:    otel.Tracer("olea/prediction"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run scores a record end to end and returns the persisted outcome. The
// record is never mutated. Scoring errors surface unchanged; explanation
// errors are logged and leave the outcome without an explanation.
func (o *Orchestrator) Run(ctx context.Context, formID id.FormID, rec form.Record, now time.Time) (*models.Outcome, error) {
	vec := features.Build(rec, now)
	return o.RunVector(ctx, formID, vec)
}

// RunVector scores a prebuilt feature vector, for callers that bypass the
// record representation.
func (o *Orchestrator) RunVector(ctx context.Context, formID id.FormID, vec features.Vector) (*models.Outcome, error) {
	result, modelVersion, cached := o.lookupCache(ctx, vec)
	if !cached {
		var err error
		result, modelVersion, err = o.score(ctx, vec)
		if err != nil {
			o.count("scoring_error")
			return nil, err
		}
		o.storeCache(ctx, vec, result, modelVersion)
	}

	outcome := &models.Outcome{
		ID:           id.NewPredictionID(),
		FormID:       formID,
		ModelVersion: modelVersion,
		Result:       result,
		Confidence:   result.Confidence,
		CreatedAt:    o.now().UTC(),
	}

	outcome.Explanation = o.explain(ctx, vec, result)

	if o.store != nil {
		if err := o.store.Create(ctx, outcome); err != nil {
			o.logger.ErrorContext(ctx, "persist prediction failed",
				"prediction_id", outcome.ID, "error", err)
		}
	}

	o.count("success")
	audit.LogAudit(ctx, o.logger, o.audit, "prediction.completed",
		"prediction_id", outcome.ID.String(),
		"bundle", outcome.Result.Bundle,
		"model_version", outcome.ModelVersion,
		"cached", cached)
	return outcome, nil
}

// PredictSession scores a session's current record and resolves the session
// with the outcome. The epoch captured before scoring guards the commit: if
// the session was reset while the model ran, the outcome is dropped.
func (o *Orchestrator) PredictSession(ctx context.Context, sid id.SessionID) (*models.Outcome, error) {
	rec, epoch, err := o.sessions.Snapshot(ctx, sid)
	if err != nil {
		return nil, err
	}

	outcome, err := o.Run(ctx, id.FormID{}, rec, o.now())
	if err != nil {
		return nil, err
	}

	if err := o.sessions.Resolve(ctx, sid, epoch, outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

// Get returns a persisted outcome by id.
func (o *Orchestrator) Get(ctx context.Context, pid id.PredictionID) (*models.Outcome, error) {
	return o.store.Get(ctx, pid)
}

func (o *Orchestrator) lookupCache(ctx context.Context, vec features.Vector) (models.Result, string, bool) {
	if o.cache == nil {
		return models.Result{}, "", false
	}
	result, modelVersion, ok := o.cache.Get(ctx, vec)
	if ok {
		o.logger.InfoContext(ctx, "prediction cache hit", "bundle", result.Bundle)
		if o.metrics != nil {
			o.metrics.CacheHit()
		}
		return result, modelVersion, true
	}
	if o.metrics != nil {
		o.metrics.CacheMiss()
	}
	return models.Result{}, "", false
}

func (o *Orchestrator) storeCache(ctx context.Context, vec features.Vector, result models.Result, modelVersion string) {
	if o.cache != nil {
		o.cache.Set(ctx, vec, result, modelVersion)
	}
}

func (o *Orchestrator) score(ctx context.Context, vec features.Vector) (models.Result, string, error) {
	ctx, span := o.tracer.Start(ctx, "prediction.score")
	defer span.End()

	start := time.Now()
	result, modelVersion, err := o.scorer.Score(ctx, vec)
	if o.metrics != nil {
		o.metrics.ObserveScoring(time.Since(start).Seconds())
	}
	if err != nil {
		o.logger.ErrorContext(ctx, "scoring call failed", "error", err)
		return models.Result{}, "", err
	}
	return result, modelVersion, nil
}

// explain never fails the pipeline. A scored outcome without an explanation
// beats no outcome.
func (o *Orchestrator) explain(ctx context.Context, vec features.Vector, result models.Result) *models.Explanation {
	if o.explainer == nil {
		return nil
	}

	ctx, span := o.tracer.Start(ctx, "prediction.explain")
	defer span.End()

	expl, err := o.explainer.Explain(ctx, vec, result)
	if err != nil {
		o.logger.WarnContext(ctx, "explanation call failed, continuing without",
			"bundle", result.Bundle, "error", err)
		if o.metrics != nil {
			o.metrics.ExplanationFailed()
		}
		return nil
	}
	return expl
}

func (o *Orchestrator) count(outcome string) {
	if o.metrics != nil {
		o.metrics.IncrementPredictions(outcome)
	}
}
