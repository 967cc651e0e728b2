package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go-storefront/models"
	"go-storefront/store"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError maps the error taxonomy onto HTTP statuses: validation
// failures are 400 with the field-specific message, missing records are
// 404, everything else is a generic store failure.
func respondError(w http.ResponseWriter, err error, fallback string) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		http.Error(w, vErr.Message, http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}
