package handler

import (
	"net/http"
	"strings"

	"catalog-api/internal/auth"
	"catalog-api/internal/model"
	"catalog-api/internal/service"

	"github.com/rs/zerolog"
)

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	service service.UserService
	maxBody int64
	logger  zerolog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc service.UserService, maxBody int64, logger zerolog.Logger) *UserHandler {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &UserHandler{
		service: svc,
		maxBody: maxBody,
		logger:  logger.With().Str("handler", "user").Logger(),
	}
}

// Register handles POST /api/users/register requests.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	p, err := readPayload(w, r, h.maxBody)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	name, _ := p.text("name")
	phone, _ := p.text("phone")
	password, _ := p.text("password")

	user, err := h.service.Register(r.Context(), model.RegisterUserInput{
		Name:     name,
		Phone:    phone,
		Password: password,
	})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, user)
}

// Login handles POST /api/users/login requests. Credentials come from the
// body; Basic auth on later requests uses the same pair.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	p, err := readPayload(w, r, h.maxBody)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	phone, _ := p.text("phone")
	password, _ := p.text("password")

	user, err := h.service.Authenticate(r.Context(), strings.TrimSpace(phone), password)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, user)
}

// List handles GET /api/users requests.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, users)
}

// Me handles GET /api/users/profile/me requests.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, user)
}

// GetByID handles GET /api/users/{id} requests.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, user)
}

// Update handles PUT /api/users/{id} requests.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFrom(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated, h.logger)
		return
	}

	p, err := readPayload(w, r, h.maxBody)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	name, _ := p.text("name")
	phone, _ := p.text("phone")
	password, _ := p.text("password")

	user, err := h.service.Update(r.Context(), actor.ID, r.PathValue("id"), model.UpdateUserInput{
		Name:     name,
		Phone:    phone,
		Password: password,
	})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id} requests.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFrom(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), actor.ID, r.PathValue("id")); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
