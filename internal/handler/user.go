package handler

import (
	"errors"
	"net/http"

	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/service"
)

// UserHandler holds the account and auth endpoints.
type UserHandler struct {
	svc         *service.UserService
	development bool
}

// NewUserHandler constructs a UserHandler. In development mode the password
// reset endpoint returns the token directly since no email goes out.
func NewUserHandler(svc *service.UserService, development bool) *UserHandler {
	return &UserHandler{svc: svc, development: development}
}

// Register handles POST /auth/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.svc.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	writeSuccess(w, http.StatusCreated, "User registered successfully.", user)
}

// Login handles POST /auth/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	writeSuccess(w, http.StatusOK, "Logged in successfully.", map[string]any{
		"token": token,
		"user":  user,
	})
}

// RequestPasswordReset handles POST /auth/password-reset/request
func (h *UserHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req model.PasswordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	token, err := h.svc.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to request password reset")
		return
	}

	// The response is identical for known and unknown emails.
	var data any
	if h.development && token != "" {
		data = map[string]string{"token": token}
	}
	writeSuccess(w, http.StatusOK, "If the email exists, a reset token has been issued.", data)
}

// ConfirmPasswordReset handles POST /auth/password-reset/confirm
func (h *UserHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req model.PasswordResetConfirm
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := h.svc.ConfirmPasswordReset(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken):
			writeError(w, http.StatusBadRequest, "invalid or expired reset token")
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to reset password")
		}
		return
	}

	writeSuccess(w, http.StatusOK, "Password reset successfully.", nil)
}
