package handler

import (
	"context"
	"net/http"

	"timesheets.service/internal/contract"
	"timesheets.service/internal/core"
)

// AuthService is what the auth endpoints need from the core.
type AuthService interface {
	Register(ctx context.Context, req contract.RegisterRequest) (contract.AuthResponse, error)
	Login(ctx context.Context, req contract.LoginRequest) (contract.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	SearchEmployers(ctx context.Context, query string) ([]contract.User, error)
}

// TimesheetService is what the timesheet endpoints need from the core.
type TimesheetService interface {
	Dashboard(ctx context.Context, userID int64) (contract.Dashboard, error)
	ClockIn(ctx context.Context, userID int64) error
	ClockOut(ctx context.Context, userID int64) error
}

type AuthHandler struct {
	Service AuthService
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req contract.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.Service.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req contract.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.Service.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout revokes the bearer token. A missing token is not an error.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := BearerToken(r); token != "" {
		if err := h.Service.Logout(r.Context(), token); err != nil {
			writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, core.ToContractUser(user))
}

func (h *AuthHandler) SearchEmployers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.SearchEmployers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type TimesheetHandler struct {
	Service TimesheetService
}

func (h *TimesheetHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	dash, err := h.Service.Dashboard(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (h *TimesheetHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, h.Service.ClockIn)
}

func (h *TimesheetHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, h.Service.ClockOut)
}

func (h *TimesheetHandler) clock(w http.ResponseWriter, r *http.Request, action func(context.Context, int64) error) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := action(r.Context(), user.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
