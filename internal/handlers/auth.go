package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"rolodex/internal/models"
	"rolodex/internal/services"
	pkgauth "rolodex/pkg/auth"
	pkghttp "rolodex/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Signup(ctx context.Context, name, email, password string) (string, error)
	VerifyOTP(ctx context.Context, email, code string) (*services.AuthResponse, error)
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*services.AuthResponse, error)
	GoogleAuthURL(ctx context.Context) (string, error)
	FederatedLogin(ctx context.Context, state, code string) (*services.AuthResponse, error)
}

// ResendLimiter gates how often a verification code may be re-requested.
type ResendLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service     AuthServiceInterface
	limiter     ResendLimiter
	frontendURL string
}

func NewAuthHandler(service AuthServiceInterface, limiter ResendLimiter, frontendURL string) *AuthHandler {
	return &AuthHandler{
		service:     service,
		limiter:     limiter,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Request DTOs

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup registers a new account and emails a verification code.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := pkgauth.ValidatePassword(req.Password); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	userID, err := h.service.Signup(r.Context(), strings.TrimSpace(req.Name), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteBadRequest(w, "An account with this email already exists")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]string{
		"userId":  userID,
		"message": "Verification code sent. Check your email.",
	})
}

// VerifyOTP confirms the emailed code and opens a session.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.service.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "No pending verification code. Request a new one.")
		case errors.Is(err, models.ErrInvalidCode):
			pkghttp.WriteBadRequest(w, "Invalid verification code")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// ResendOTP re-issues a verification code, rate limited per address.
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	allowed, err := h.limiter.Allow(r.Context(), email)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	if !allowed {
		pkghttp.WriteTooManyRequests(w, "Too many verification requests. Try again later.")
		return
	}

	if err := h.service.ResendOTP(r.Context(), email); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "No account found for this email")
		case errors.Is(err, models.ErrAlreadyVerified):
			pkghttp.WriteBadRequest(w, "This account is already verified")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Verification code sent. Check your email.",
	})
}

// Login authenticates with email and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteBadRequest(w, "Invalid email or password")
		case errors.Is(err, models.ErrNotVerified):
			pkghttp.WriteUnauthorized(w, "Email not verified. Check your inbox for the verification code.")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Logout is stateless: the client discards its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out. Discard your token.",
	})
}

// GoogleRedirect sends the browser to the Google consent screen.
func (h *AuthHandler) GoogleRedirect(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.service.GoogleAuthURL(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// GoogleCallback completes the OAuth flow and hands the session token to the
// frontend via redirect.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		http.Redirect(w, r, h.frontendURL+"/auth/failure", http.StatusTemporaryRedirect)
		return
	}

	resp, err := h.service.FederatedLogin(r.Context(), state, code)
	if err != nil {
		http.Redirect(w, r, h.frontendURL+"/auth/failure", http.StatusTemporaryRedirect)
		return
	}

	redirect := h.frontendURL + "/auth/success?token=" + url.QueryEscape(resp.Token)
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}
