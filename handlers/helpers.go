package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"spendly/backend/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP status codes. The
// message is the user-facing string carried by the error itself.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	var authErr *models.AuthError
	var configErr *models.ConfigurationError
	var backendErr *models.BackendError

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Message, http.StatusBadRequest)
	case errors.As(err, &authErr):
		http.Error(w, authErr.Message, http.StatusUnauthorized)
	case errors.As(err, &configErr):
		http.Error(w, configErr.Message, http.StatusServiceUnavailable)
	case errors.As(err, &backendErr):
		http.Error(w, backendErr.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
