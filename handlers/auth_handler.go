package handlers

import (
	"errors"
	"net/http"

	"github.com/orya-live/padel-engine/services"
)

var errUserIDPasswordRequired = errors.New("user_id and password are required")

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginHandler выдаёт JWT для учётной записи панели организатора.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID   string `json:"user_id"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.UserID == "" || input.Password == "" {
		badRequestResponse(w, r, errUserIDPasswordRequired)
		return
	}

	result, err := h.authService.Login(r.Context(), input.UserID, input.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"auth": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
