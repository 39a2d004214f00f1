// Package handler exposes the OCR extraction endpoints.
package handler

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"olea/internal/extraction"
	"olea/internal/transport/http/shared"
	dErrors "olea/pkg/domain-errors"
)

type Handler struct {
	svc    *extraction.Service
	logger *slog.Logger
}

func New(svc *extraction.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/ocr/extract", h.extract)
	r.Post("/ocr/extract-multiple", h.extractMultiple)
}

func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	docs, err := readDocuments(r, "file", 1)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	res, err := h.svc.Extract(r.Context(), docs[0])
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) extractMultiple(w http.ResponseWriter, r *http.Request) {
	docs, err := readDocuments(r, "files", extraction.MaxFiles)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	res, err := h.svc.ExtractMerged(r.Context(), docs)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, res)
}

// readDocuments pulls uploaded files out of the multipart form. Size and
// type limits are enforced by the service; this only bounds the count and
// the parse buffer.
func readDocuments(r *http.Request, field string, maxFiles int) ([]extraction.Document, error) {
	if err := r.ParseMultipartForm(extraction.MaxFileSize); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "parse multipart form")
	}

	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		// Single-file clients sometimes post under "file" regardless.
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "no %q part in form", field)
	}
	if len(headers) > maxFiles {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "too many files: max %d", maxFiles)
	}

	docs := make([]extraction.Document, 0, len(headers))
	for _, header := range headers {
		doc, err := readDocument(header)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func readDocument(header *multipart.FileHeader) (extraction.Document, error) {
	file, err := header.Open()
	if err != nil {
		return extraction.Document{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, extraction.MaxFileSize+1))
	if err != nil {
		return extraction.Document{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "read uploaded file")
	}
	return extraction.Document{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
