package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"timesheets.service/internal/contract"
	"timesheets.service/internal/core"
)

const internalErrorMessage = "Internal server error"

var errorStatus = []struct {
	err    error
	status int
}{
	{core.ErrMissingFields, http.StatusBadRequest},
	{core.ErrInvalidRole, http.StatusBadRequest},
	{core.ErrEmployerRequired, http.StatusBadRequest},
	{core.ErrEmployerNotFound, http.StatusBadRequest},
	{core.ErrMissingEmployer, http.StatusBadRequest},
	{core.ErrAlreadyClockedIn, http.StatusBadRequest},
	{core.ErrNoActiveSession, http.StatusBadRequest},
	{core.ErrUserExists, http.StatusConflict},
	{core.ErrEmailExists, http.StatusConflict},
	{core.ErrClockActionInFlight, http.StatusConflict},
	{core.ErrInvalidCredentials, http.StatusUnauthorized},
	{core.ErrInvalidToken, http.StatusUnauthorized},
	{core.ErrAccountDisabled, http.StatusForbidden},
	{core.ErrAccountLocked, http.StatusForbidden},
	{core.ErrNotEmployee, http.StatusForbidden},
	{core.ErrUserNotFound, http.StatusNotFound},
	{core.ErrEmployeeNotFound, http.StatusNotFound},
}

// StatusFor maps a service error to its HTTP status. Unknown errors are 500.
func StatusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError renders err as {"error": "..."}. Internal errors are logged and
// hidden from the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		msg = internalErrorMessage
	}
	writeJSON(w, status, contract.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, contract.ErrorResponse{Error: "Invalid request body"})
		return false
	}
	return true
}
