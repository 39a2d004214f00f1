// Package handler exposes the session lifecycle endpoints: create, inspect,
// navigate, edit fields, scan documents, and predict.
package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"olea/internal/extraction"
	"olea/internal/form"
	"olea/internal/prediction"
	"olea/internal/session"
	"olea/internal/transport/http/shared"
	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
)

type Handler struct {
	router     *session.Router
	extraction *extraction.Service
	orch       *prediction.Orchestrator
	logger     *slog.Logger
}

func New(router *session.Router, ext *extraction.Service, orch *prediction.Orchestrator, logger *slog.Logger) *Handler {
	return &Handler{router: router, extraction: ext, orch: orch, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/session", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Post("/{id}/navigate", h.navigate)
		r.Patch("/{id}/fields", h.updateField)
		r.Post("/{id}/scan", h.scan)
		r.Post("/{id}/predict", h.predict)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	sess := h.router.Create(r.Context())
	shared.WriteJSON(w, http.StatusCreated, sess)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	sess, err := h.router.Get(r.Context(), sid)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sess)
}

type navigateRequest struct {
	Target session.State `json:"target"`
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req navigateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	sess, err := h.router.Navigate(r.Context(), sid, req.Target)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sess)
}

type updateFieldRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

func (h *Handler) updateField(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req updateFieldRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	sess, err := h.router.UpdateField(r.Context(), sid, form.Field(req.Field), req.Value)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sess)
}

// scan runs uploaded documents through extraction and reconciles the result
// onto the session's record. The session must already be in Scanning; the
// epoch captured before the engine call guards the commit.
func (h *Handler) scan(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	sess, err := h.router.Get(r.Context(), sid)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if sess.State != session.StateScanning {
		shared.WriteError(w, dErrors.Newf(dErrors.CodeValidation,
			"session must be scanning, is %s", sess.State))
		return
	}
	epoch := sess.Epoch

	docs, err := readDocuments(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	res, err := h.extraction.ExtractMerged(r.Context(), docs)
	if err != nil {
		if failErr := h.router.FailScan(r.Context(), sid, epoch); failErr != nil {
			h.logger.ErrorContext(r.Context(), "record scan failure", "error", failErr)
		}
		shared.WriteError(w, err)
		return
	}

	updated, err := h.router.CompleteScan(r.Context(), sid, epoch, res)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	outcome, err := h.orch.PredictSession(r.Context(), sid)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, outcome)
}

func sessionID(r *http.Request) (id.SessionID, error) {
	sid, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		return id.SessionID{}, dErrors.New(dErrors.CodeBadRequest, "invalid session id")
	}
	return sid, nil
}

func readDocuments(r *http.Request) ([]extraction.Document, error) {
	if err := r.ParseMultipartForm(extraction.MaxFileSize); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "parse multipart form")
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no files in form")
	}

	docs := make([]extraction.Document, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "open uploaded file")
		}
		data, readErr := io.ReadAll(io.LimitReader(file, extraction.MaxFileSize+1))
		file.Close()
		if readErr != nil {
			return nil, dErrors.Wrap(readErr, dErrors.CodeBadRequest, "read uploaded file")
		}
		docs = append(docs, extraction.Document{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return docs, nil
}
