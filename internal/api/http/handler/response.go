package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vidstream/identity/internal/service"
)

// apiResponse is the envelope every endpoint returns.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data, Message: message})
}

func writeError(w http.ResponseWriter, err error) {
	status, message := statusFromError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: false, Message: message})
}

// statusFromError maps service sentinel errors to HTTP statuses. Unknown
// errors surface as 500 with a safe message.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrFieldsRequired),
		errors.Is(err, service.ErrAvatarRequired),
		errors.Is(err, service.ErrAvatarUpload),
		errors.Is(err, service.ErrMissingLogin):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUserExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
