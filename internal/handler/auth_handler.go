package handler

import (
	"net/http"

	"campus-market/internal/model"
	"campus-market/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles account HTTP requests.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new account handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	if _, err := h.service.Register(r.Context(), &req); err != nil {
		respondError(w, err, "Error en el servidor", h.logger)
		return
	}
	writeMessage(w, http.StatusCreated, "Usuario registrado correctamente")
}

// Login handles POST /auth/login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		respondError(w, err, "Error en el servidor", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, model.LoginResponse{Token: token})
}

// Logout handles POST /auth/logout. Tokens are stateless, so this only
// acknowledges the request.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Sesión cerrada correctamente")
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.service.Profile(r.Context(), id)
	if err != nil {
		respondError(w, err, "Error al obtener el perfil", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	var req model.UpdateProfileRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), id, &req)
	if err != nil {
		respondError(w, err, "Error al actualizar perfil", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteAccount(r.Context(), id); err != nil {
		respondError(w, err, "Error al eliminar cuenta", h.logger)
		return
	}
	writeMessage(w, http.StatusOK, "Cuenta eliminada correctamente")
}
