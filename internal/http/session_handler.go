package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/session"
	"go.uber.org/zap"
)

type SessionHandler struct {
	session *session.Store
	log     *zap.Logger
	maxBody int64
}

func NewSessionHandler(s *session.Store, maxBody int64, log *zap.Logger) *SessionHandler {
	return &SessionHandler{session: s, log: log, maxBody: maxBody}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponseDTO struct {
	Authenticated bool                `json:"authenticated"`
	User          *domain.SessionUser `json:"user,omitempty"`
	IsAdmin       bool                `json:"isAdmin"`
	ExpiresAt     *time.Time          `json:"expiresAt,omitempty"`
}

func (h *SessionHandler) view() SessionResponseDTO {
	u := h.session.User()
	dto := SessionResponseDTO{
		Authenticated: u != nil,
		User:          u,
		IsAdmin:       u != nil && u.IsAdmin(),
	}
	if exp, ok := h.session.ExpiresAt(); ok {
		dto.ExpiresAt = &exp
	}
	return dto
}

// GET /api/v1/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.view())
}

// POST /api/v1/session/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	if _, err := h.session.Login(r.Context(), req.Email, req.Password); err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view())
}

// POST /api/v1/session/register
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequestDTO
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "name, email and password are required")
		return
	}

	if _, err := h.session.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.view())
}

// POST /api/v1/session/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout(r.Context())
	respondJSON(w, http.StatusOK, h.view())
}
