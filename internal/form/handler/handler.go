// Package handler exposes form submission CRUD and the field schema.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"olea/internal/form"
	"olea/internal/transport/http/shared"
	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
)

// Store is the submission persistence the handler needs.
type Store interface {
	Create(ctx context.Context, sub *form.Submission) error
	Get(ctx context.Context, fid id.FormID) (*form.Submission, error)
	List(ctx context.Context, limit int) ([]form.Submission, error)
	Update(ctx context.Context, sub *form.Submission) error
	Delete(ctx context.Context, fid id.FormID) error
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/forms", func(r chi.Router) {
		r.Get("/schema", h.schema)
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type submissionRequest struct {
	FormType string         `json:"form_type"`
	Status   string         `json:"status"`
	Data     map[string]any `json:"data"`
}

// schema describes the canonical fields so clients can render the form
// without hardcoding it.
func (h *Handler) schema(w http.ResponseWriter, r *http.Request) {
	type fieldInfo struct {
		Name        string   `json:"name"`
		Type        string   `json:"type"`
		ValidValues []string `json:"valid_values,omitempty"`
		Description string   `json:"description,omitempty"`
	}

	out := make([]fieldInfo, 0, form.Count())
	for _, f := range form.Fields() {
		spec, _ := form.SpecOf(f)
		kind := "text"
		switch spec.Kind {
		case form.KindDigits:
			kind = "number"
		case form.KindBool:
			kind = "boolean"
		}
		out = append(out, fieldInfo{
			Name:        string(f),
			Type:        kind,
			ValidValues: spec.ValidValues,
			Description: spec.Description,
		})
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"fields": out})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	now := time.Now().UTC()
	status := req.Status
	if status == "" {
		status = form.SubmissionSubmitted
	}
	sub := &form.Submission{
		ID:        id.NewFormID(),
		FormType:  req.FormType,
		Status:    status,
		Record:    form.FromRaw(req.Data),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.Create(r.Context(), sub); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, sub)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	subs, err := h.store.List(r.Context(), limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"forms": subs, "count": len(subs)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	fid, err := formID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	sub, err := h.store.Get(r.Context(), fid)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	fid, err := formID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req submissionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	sub, err := h.store.Get(r.Context(), fid)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if req.FormType != "" {
		sub.FormType = req.FormType
	}
	if req.Status != "" {
		sub.Status = req.Status
	}
	if req.Data != nil {
		sub.Record = form.FromRaw(req.Data)
	}
	sub.UpdatedAt = time.Now().UTC()

	if err := h.store.Update(r.Context(), sub); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	fid, err := formID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.store.Delete(r.Context(), fid); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusNoContent, nil)
}

func formID(r *http.Request) (id.FormID, error) {
	fid, err := id.ParseFormID(chi.URLParam(r, "id"))
	if err != nil {
		return id.FormID{}, dErrors.New(dErrors.CodeBadRequest, "invalid form id")
	}
	return fid, nil
}
