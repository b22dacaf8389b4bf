package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wencuts/masterclass/internal/session"
	"go.uber.org/zap"
)

// SessionService is the interface that wraps the authentication state machine.
type SessionService interface {
	// Method RequestOTP requests a login OTP for a mobile number,
	// retrying once with the bare number if the country-code encoding
	// is rejected.
	RequestOTP(ctx context.Context, mobile string) error
	// Method RequestRegistrationOTP requests an OTP for a new account.
	RequestRegistrationOTP(ctx context.Context, mobile string) error
	// Method VerifyOTP exchanges the held token and code for a session.
	VerifyOTP(ctx context.Context, code string) error
	// Method RegisterWithOTP verifies a registration OTP and installs
	// the created account.
	RegisterWithOTP(ctx context.Context, name, email, mobile, code string) error
	// Method LoginWithEmail authenticates with email and password.
	LoginWithEmail(ctx context.Context, email, password string) error
	// Method RegisterDirect creates an account with a password.
	RegisterDirect(ctx context.Context, name, email, mobile, password string) error
	// Method RequestPasswordReset requests a reset OTP by email.
	RequestPasswordReset(ctx context.Context, email string) error
	// Method ResetPassword sets a new password gated by the reset OTP.
	ResetPassword(ctx context.Context, email, code, newPassword, confirm string) error
	// Method Logout clears the session unconditionally.
	Logout()
	// Method ClearError discards the store's error state.
	ClearError()
	// Method Snapshot returns the current session state.
	Snapshot() session.State
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	sessions SessionService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions SessionService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		sessions:    sessions,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *AuthHandler) RegisterRoutes(r chi.Router, otpLimiter func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(otpLimiter)
			r.Post("/otp/request", h.RequestOTP)
			r.Post("/register/otp/request", h.RequestRegistrationOTP)
			r.Post("/reset/request", h.RequestPasswordReset)
		})
		r.Post("/otp/verify", h.VerifyOTP)
		r.Post("/register/otp/verify", h.RegisterWithOTP)
		r.Post("/login", h.LoginWithEmail)
		r.Post("/register", h.RegisterDirect)
		r.Post("/reset/confirm", h.ResetPassword)
		r.Post("/logout", h.Logout)
		r.Post("/error/clear", h.ClearError)
		r.Get("/session", h.Session)
	})
}

// RequestOTP handles POST /auth/otp/request
func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mobile string `json:"mobile"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessions.RequestOTP(r.Context(), req.Mobile); err != nil {
		h.RespondFailure(w, err, "Failed to send OTP")
		return
	}

	h.RespondNotice(w, "OTP sent successfully!")
}

// RequestRegistrationOTP handles POST /auth/register/otp/request
func (h *AuthHandler) RequestRegistrationOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mobile string `json:"mobile"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessions.RequestRegistrationOTP(r.Context(), req.Mobile); err != nil {
		h.RespondFailure(w, err, "Failed to send OTP")
		return
	}

	h.RespondNotice(w, "OTP sent successfully!")
}

// VerifyOTP handles POST /auth/otp/verify
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OTP string `json:"otp"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessions.VerifyOTP(r.Context(), req.OTP); err != nil {
		h.RespondFailure(w, err, "Authentication failed")
		return
	}

	h.RespondNotice(w, "Authentication successful")
}

// RegisterWithOTP handles POST /auth/register/otp/verify
func (h *AuthHandler) RegisterWithOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Email  string `json:"email"`
		Mobile string `json:"mobile"`
		OTP    string `json:"otp"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessions.RegisterWithOTP(r.Context(), req.Name, req.Email, req.Mobile, req.OTP); err != nil {
		h.RespondFailure(w, err, "Registration failed")
		return
	}

	h.RespondNotice(w, "Account created successfully!")
}

// LoginWithEmail handles POST /auth/login
func (h *AuthHandler) LoginWithEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessions.LoginWithEmail(r.Context(), req.Email, req.Password); err != nil {
		h.RespondFailure(w, err, "Login failed")
		return
	}

	h.RespondNotice(w, "Login successful")
}

// RegisterDirect handles POST /auth/register
func (h *AuthHandler) RegisterDirect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Mobile   string `json:"mobile"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessions.RegisterDirect(r.Context(), req.Name, req.Email, req.Mobile, req.Password); err != nil {
		h.RespondFailure(w, err, "Registration failed")
		return
	}

	h.RespondNotice(w, "Account created successfully!")
}

// RequestPasswordReset handles POST /auth/reset/request
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessions.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.RespondFailure(w, err, "Failed to send reset OTP")
		return
	}

	h.RespondNotice(w, "OTP sent successfully!")
}

// ResetPassword handles POST /auth/reset/confirm
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email           string `json:"email"`
		OTP             string `json:"otp"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessions.ResetPassword(r.Context(), req.Email, req.OTP, req.Password, req.ConfirmPassword); err != nil {
		h.RespondFailure(w, err, "Failed to reset password")
		return
	}

	h.RespondNotice(w, "Password reset successful")
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout()
	h.RespondNotice(w, "Logged out")
}

// ClearError handles POST /auth/error/clear
func (h *AuthHandler) ClearError(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearError()
	h.RespondNotice(w, "Error cleared")
}

// Session handles GET /auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, h.sessions.Snapshot())
}
