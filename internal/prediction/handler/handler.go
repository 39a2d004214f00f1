// Package handler exposes the prediction and explanation endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"olea/internal/features"
	"olea/internal/form"
	"olea/internal/prediction"
	"olea/internal/prediction/models"
	"olea/internal/transport/http/shared"
	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
)

// Forms resolves a stored submission when a prediction is requested by
// form id.
type Forms interface {
	Get(ctx context.Context, fid id.FormID) (*form.Submission, error)
}

type Handler struct {
	orch   *prediction.Orchestrator
	forms  Forms
	logger *slog.Logger
}

func New(orch *prediction.Orchestrator, forms Forms, logger *slog.Logger) *Handler {
	return &Handler{orch: orch, forms: forms, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/predictions", func(r chi.Router) {
		r.Post("/", h.predict)
		r.Post("/from-features", h.predictFromFeatures)
		r.Get("/{id}", h.get)
	})
	r.Post("/explain", h.explain)
}

type predictRequest struct {
	FormID string         `json:"form_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// predict scores either a stored submission (by form id) or an inline
// record.
func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	var (
		rec    form.Record
		formID id.FormID
	)
	switch {
	case req.FormID != "":
		fid, err := id.ParseFormID(req.FormID)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form id"))
			return
		}
		sub, err := h.forms.Get(r.Context(), fid)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		rec, formID = sub.Record, fid
	case req.Data != nil:
		rec = form.FromRaw(req.Data)
	default:
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "form_id or data required"))
		return
	}

	outcome, err := h.orch.Run(r.Context(), formID, rec, time.Now())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, outcome)
}

// predictFromFeatures scores a prebuilt feature vector, for callers doing
// their own feature engineering.
func (h *Handler) predictFromFeatures(w http.ResponseWriter, r *http.Request) {
	var vec features.Vector
	if err := shared.DecodeJSON(r, &vec); err != nil {
		shared.WriteError(w, err)
		return
	}

	outcome, err := h.orch.RunVector(r.Context(), id.FormID{}, vec)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, outcome)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	pid, err := id.ParsePredictionID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid prediction id"))
		return
	}

	outcome, err := h.orch.Get(r.Context(), pid)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, outcome)
}

type explainRequest struct {
	PredictionID string `json:"prediction_id"`
}

type explainResponse struct {
	PredictionID string              `json:"prediction_id"`
	Bundle       string              `json:"purchased_coverage_bundle"`
	Explanation  *models.Explanation `json:"explanation"`
}

// explain returns the stored interpretability payload for a prediction.
func (h *Handler) explain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	pid, err := id.ParsePredictionID(req.PredictionID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid prediction id"))
		return
	}

	outcome, err := h.orch.Get(r.Context(), pid)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if outcome.Explanation == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no explanation available for this prediction"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, explainResponse{
		PredictionID: outcome.ID.String(),
		Bundle:       outcome.Result.Bundle,
		Explanation:  outcome.Explanation,
	})
}
