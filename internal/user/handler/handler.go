// Package handler exposes account management and login. Mutating and list
// routes sit behind bearer-token auth; registration and login do not.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"olea/internal/platform/middleware"
	"olea/internal/transport/http/shared"
	"olea/internal/user"
	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
)

type Handler struct {
	svc       *user.Service
	validator middleware.JWTValidator
	logger    *slog.Logger
}

func New(svc *user.Service, validator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, validator: validator, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.create)
		r.Post("/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.validator, h.logger))
			r.Get("/", h.list)
			r.Get("/{id}", h.get)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
}

type createRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	u, err := h.svc.Create(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        *user.User `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        u,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	users, err := h.svc.List(r.Context(), limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	u, err := h.svc.Get(r.Context(), uid)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, u)
}

type updateRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req updateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	u, err := h.svc.Update(r.Context(), uid, req.Name, req.Password)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), uid); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusNoContent, nil)
}

func userID(r *http.Request) (id.UserID, error) {
	uid, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		return id.UserID{}, dErrors.New(dErrors.CodeBadRequest, "invalid user id")
	}
	return uid, nil
}
