package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"seoulmate-backend/internal/models"
	"seoulmate-backend/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type authResponse struct {
	User   *models.User       `json:"user"`
	Tokens *models.AuthTokens `json:"tokens"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body."))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Nickname = strings.TrimSpace(req.Nickname)

	user, tokens, err := h.auth.Register(r.Context(), req)
	if err != nil {
		var vErr *services.ValidationError
		var cErr *services.ConflictError
		switch {
		case errors.As(err, &vErr):
			writeJSON(w, http.StatusBadRequest, errorResp(vErr.Message))
		case errors.As(err, &cErr):
			writeJSON(w, http.StatusConflict, errorResp(cErr.Message))
		default:
			log.Printf("register failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("Registration failed."))
		}
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: user, Tokens: tokens})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body."))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, tokens, err := h.auth.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResp("Invalid email or password."))
			return
		}
		log.Printf("login failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Login failed."))
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: user, Tokens: tokens})
}
