package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"rolodex/internal/auth"
	"rolodex/internal/models"
	pkgauth "rolodex/pkg/auth"
)

// notifyTimeout bounds outbound mail dispatch so a slow provider cannot
// hold a signup request open indefinitely.
const notifyTimeout = 10 * time.Second

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	SetVerified(ctx context.Context, id string) (*models.User, error)
	LinkGoogleID(ctx context.Context, id, googleID string) (*models.User, error)
}

// OTPStore holds at most one live verification code per email.
type OTPStore interface {
	Put(ctx context.Context, email, code string) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

// StateStore tracks single-use OAuth state nonces.
type StateStore interface {
	Put(ctx context.Context, state string) error
	Consume(ctx context.Context, state string) (bool, error)
}

// AuthResponse is returned by every operation that establishes a session.
type AuthResponse struct {
	Token string             `json:"token"`
	User  *models.Projection `json:"user"`
}

// AuthService handles signup, verification, and login business logic
type AuthService struct {
	users    UserRepository
	otps     OTPStore
	states   StateStore
	notifier Notifier
	provider auth.IdentityProvider
	tm       *auth.TokenManager
	logger   *slog.Logger
}

func NewAuthService(users UserRepository, otps OTPStore, states StateStore, notifier Notifier, provider auth.IdentityProvider, tm *auth.TokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		otps:     otps,
		states:   states,
		notifier: notifier,
		provider: provider,
		tm:       tm,
		logger:   logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers an unverified account, hashes the password, and emails a
// verification code. The account stays unusable until the code is confirmed.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (string, error) {
	email = normalizeEmail(email)

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("signup rejected: email already registered")
		return "", models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check existing user", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	user, err := s.users.Create(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Verified:     false,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return "", models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if err := s.issueAndSendOTP(ctx, user.Email, user.Name); err != nil {
		return "", err
	}

	s.logger.Info("user signed up", slog.String("user_id", user.ID))
	return user.ID, nil
}

// issueAndSendOTP writes a fresh code (superseding any live one) and emails
// it. A delivery failure is surfaced to the caller; the stored code remains
// valid so a resend can recover without reissuing.
func (s *AuthService) issueAndSendOTP(ctx context.Context, email, name string) error {
	code, err := auth.GenerateOTP()
	if err != nil {
		s.logger.Error("failed to generate verification code", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.otps.Put(ctx, email, code); err != nil {
		s.logger.Error("failed to store verification code", slog.Any("error", err))
		return models.ErrInternalServer
	}

	notifyCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if err := s.notifier.SendOTPEmail(notifyCtx, email, name, code); err != nil {
		s.logger.Error("failed to deliver verification code", slog.Any("error", err))
		return models.ErrInternalServer
	}

	return nil
}

// VerifyOTP confirms a pending code. A matching code is single-use: it is
// deleted before the account is marked verified, so a second attempt with
// the same code reads as not found.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*AuthResponse, error) {
	email = normalizeEmail(email)

	stored, err := s.otps.Get(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to read verification code", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		s.logger.Info("verification failed: code mismatch")
		return nil, models.ErrInvalidCode
	}

	if err := s.otps.Delete(ctx, email); err != nil {
		s.logger.Error("failed to consume verification code", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to load user for verification", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err = s.users.SetVerified(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to mark user verified", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return s.newSession(user)
}

// ResendOTP issues a fresh code for an unverified account. The new code
// supersedes the previous one. Rate limiting happens at the handler before
// this is called.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to load user for resend", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if user.Verified {
		return models.ErrAlreadyVerified
	}

	return s.issueAndSendOTP(ctx, user.Email, user.Name)
}

// Login authenticates with email and password. Unknown addresses and wrong
// passwords produce the same error so the response does not reveal which
// emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: invalid credentials")
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Federated-only accounts have no password to compare.
	if user.PasswordHash == "" {
		s.logger.Info("login failed: invalid credentials")
		return nil, models.ErrInvalidCredentials
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials")
		return nil, models.ErrInvalidCredentials
	}

	if !user.Verified {
		s.logger.Info("login blocked: email not verified", slog.String("user_id", user.ID))
		return nil, models.ErrNotVerified
	}

	return s.newSession(user)
}

// GoogleAuthURL stores a single-use state nonce and returns the consent URL
// to redirect the browser to.
func (s *AuthService) GoogleAuthURL(ctx context.Context) (string, error) {
	state := uuid.New().String()
	if err := s.states.Put(ctx, state); err != nil {
		s.logger.Error("failed to store oauth state", slog.Any("error", err))
		return "", models.ErrInternalServer
	}
	return s.provider.AuthCodeURL(state), nil
}

// FederatedLogin completes the OAuth callback: burns the state nonce,
// exchanges the code, and upserts the account by provider subject. Existing
// password accounts with a matching email are linked rather than duplicated;
// brand-new federated accounts are created already verified.
func (s *AuthService) FederatedLogin(ctx context.Context, state, code string) (*AuthResponse, error) {
	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		s.logger.Error("failed to consume oauth state", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !ok {
		s.logger.Info("federated login rejected: unknown or reused state")
		return nil, models.ErrUnauthorized
	}

	profile, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.logger.Info("federated login rejected: code exchange failed", slog.Any("error", err))
		return nil, models.ErrUnauthorized
	}

	user, err := s.upsertFederatedUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	return s.newSession(user)
}

func (s *AuthService) upsertFederatedUser(ctx context.Context, profile *models.GoogleProfile) (*models.User, error) {
	user, err := s.users.GetByGoogleID(ctx, profile.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to look up federated user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if profile.Email != "" {
		existing, err := s.users.GetByEmail(ctx, profile.Email)
		if err == nil {
			linked, err := s.users.LinkGoogleID(ctx, existing.ID, profile.Subject)
			if err != nil {
				s.logger.Error("failed to link federated identity", slog.String("user_id", existing.ID), slog.Any("error", err))
				return nil, models.ErrInternalServer
			}
			s.logger.Info("federated identity linked", slog.String("user_id", linked.ID))
			return linked, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to look up user by email", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
	}

	user, err = s.users.Create(ctx, &models.User{
		Name:     profile.Name,
		Email:    normalizeEmail(profile.Email),
		GoogleID: profile.Subject,
		Picture:  profile.Picture,
		Role:     models.RoleUser,
		Verified: true,
	})
	if err != nil {
		s.logger.Error("failed to create federated user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("federated user created", slog.String("user_id", user.ID))
	return user, nil
}

func (s *AuthService) newSession(user *models.User) (*AuthResponse, error) {
	token, err := s.tm.Generate(user.ID, user.Role)
	if err != nil {
		s.logger.Error("failed to issue session token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &AuthResponse{Token: token, User: user.Project()}, nil
}
