package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolodex/internal/auth"
	"rolodex/internal/models"
	pkgauth "rolodex/pkg/auth"
)

const testJWTSecret = "test-secret-32-characters-long!!"

type authFixture struct {
	users    *MockUserRepository
	otps     *MockOTPStore
	states   *MockStateStore
	notifier *MockNotifier
	provider *MockIdentityProvider
	tm       *auth.TokenManager
	svc      *AuthService
}

func newAuthFixture(users *MockUserRepository) *authFixture {
	f := &authFixture{
		users:    users,
		otps:     &MockOTPStore{Codes: map[string]string{}},
		states:   &MockStateStore{},
		notifier: &MockNotifier{},
		provider: &MockIdentityProvider{},
		tm:       auth.NewTokenManager(testJWTSecret, time.Hour),
	}
	f.svc = NewAuthService(f.users, f.otps, f.states, f.notifier, f.provider, f.tm, slog.Default())
	return f
}

func verifiedUser(email string) *models.User {
	hash, _ := pkgauth.HashPassword("SecurePassword123!")
	return &models.User{
		ID:           "user123",
		Name:         "John Doe",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Verified:     true,
	}
}

func TestAuthService_Signup_Success(t *testing.T) {
	var created *models.User
	f := newAuthFixture(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "user123"
			created = user
			return user, nil
		},
	})

	id, err := f.svc.Signup(context.Background(), "John Doe", "User@Example.com", "SecurePassword123!")

	require.NoError(t, err)
	assert.Equal(t, "user123", id)
	require.NotNil(t, created)
	assert.False(t, created.Verified)
	assert.Equal(t, "user@example.com", created.Email, "email must be normalized")
	assert.NotEqual(t, "SecurePassword123!", created.PasswordHash)

	require.Len(t, f.notifier.Sent, 1)
	assert.Equal(t, f.notifier.Sent[0], f.otps.Codes["user@example.com"],
		"stored and mailed codes must match")
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return verifiedUser(email), nil
		},
	})

	_, err := f.svc.Signup(context.Background(), "John Doe", "user@example.com", "SecurePassword123!")
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Empty(t, f.notifier.Sent)
}

func TestAuthService_Signup_NotifierFailureSurfaces(t *testing.T) {
	f := newAuthFixture(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "user123"
			return user, nil
		},
	})
	f.notifier.SendOTPEmailFunc = func(ctx context.Context, email, name, code string) error {
		return assert.AnError
	}

	_, err := f.svc.Signup(context.Background(), "John Doe", "user@example.com", "SecurePassword123!")
	assert.ErrorIs(t, err, models.ErrInternalServer)
	assert.NotEmpty(t, f.otps.Codes["user@example.com"],
		"code stays issued so a resend can recover")
}

func TestAuthService_VerifyOTP_Success(t *testing.T) {
	user := verifiedUser("user@example.com")
	user.Verified = false

	f := newAuthFixture(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
		SetVerifiedFunc: func(ctx context.Context, id string) (*models.User, error) {
			user.Verified = true
			return user, nil
		},
	})
	f.otps.Codes["user@example.com"] = "123456"

	resp, err := f.svc.VerifyOTP(context.Background(), "user@example.com", "123456")

	require.NoError(t, err)
	assert.True(t, user.Verified)
	assert.Equal(t, "user123", resp.User.ID)
	assert.NotContains(t, f.otps.Codes, "user@example.com", "code is single-use")

	claims, err := f.tm.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user123", claims.UserID)
}

func TestAuthService_VerifyOTP_WrongCodeKeepsState(t *testing.T) {
	setVerifiedCalled := false
	f := newAuthFixture(&MockUserRepository{
		SetVerifiedFunc: func(ctx context.Context, id string) (*models.User, error) {
			setVerifiedCalled = true
			return nil, nil
		},
	})
	f.otps.Codes["user@example.com"] = "123456"

	_, err := f.svc.VerifyOTP(context.Background(), "user@example.com", "654321")

	assert.ErrorIs(t, err, models.ErrInvalidCode)
	assert.Equal(t, "123456", f.otps.Codes["user@example.com"], "code survives a failed attempt")
	assert.False(t, setVerifiedCalled)
}

func TestAuthService_VerifyOTP_NoLiveCode(t *testing.T) {
	f := newAuthFixture(&MockUserRepository{})

	_, err := f.svc.VerifyOTP(context.Background(), "user@example.com", "123456")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAuthService_ResendOTP_SupersedesPrevious(t *testing.T) {
	user := verifiedUser("user@example.com")
	user.Verified = false

	f := newAuthFixture(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	})
	f.otps.Codes["user@example.com"] = "000000"

	err := f.svc.ResendOTP(context.Background(), "user@example.com")

	require.NoError(t, err)
	require.Len(t, f.notifier.Sent, 1)
	assert.Equal(t, f.notifier.Sent[0], f.otps.Codes["user@example.com"])
	assert.NotEqual(t, "000000", f.notifier.Sent[0], "old code must be superseded")
}

func TestAuthService_ResendOTP_UnknownEmail(t *testing.T) {
	f := newAuthFixture(&MockUserRepository{})

	err := f.svc.ResendOTP(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAuthService_ResendOTP_AlreadyVerified(t *testing.T) {
	f := newAuthFixture(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return verifiedUser(email), nil
		},
	})

	err := f.svc.ResendOTP(context.Background(), "user@example.com")
	assert.ErrorIs(t, err, models.ErrAlreadyVerified)
	assert.Empty(t, f.notifier.Sent)
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return verifiedUser(email), nil
		},
	})

	resp, err := f.svc.Login(context.Background(), "user@example.com", "SecurePassword123!")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "user123", resp.User.ID)
	assert.Equal(t, "John Doe", resp.User.Name)
}

func TestAuthService_Login_UniformInvalidCredentials(t *testing.T) {
	// Unknown email and wrong password must be indistinguishable.
	unknown := newAuthFixture(&MockUserRepository{})
	_, errUnknown := unknown.svc.Login(context.Background(), "nobody@example.com", "SecurePassword123!")

	wrongPass := newAuthFixture(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return verifiedUser(email), nil
		},
	})
	_, errWrong := wrongPass.svc.Login(context.Background(), "user@example.com", "WrongPassword123!")

	assert.ErrorIs(t, errUnknown, models.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, models.ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrong)
}

func TestAuthService_Login_Unverified(t *testing.T) {
	user := verifiedUser("user@example.com")
	user.Verified = false

	f := newAuthFixture(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	})

	_, err := f.svc.Login(context.Background(), "user@example.com", "SecurePassword123!")
	assert.ErrorIs(t, err, models.ErrNotVerified)
}

func TestAuthService_Login_FederatedOnlyAccount(t *testing.T) {
	f := newAuthFixture(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			u := verifiedUser(email)
			u.PasswordHash = ""
			u.GoogleID = "google-sub-1"
			return u, nil
		},
	})

	_, err := f.svc.Login(context.Background(), "user@example.com", "SecurePassword123!")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthService_GoogleAuthURL_StoresState(t *testing.T) {
	f := newAuthFixture(&MockUserRepository{})

	url, err := f.svc.GoogleAuthURL(context.Background())

	require.NoError(t, err)
	assert.Contains(t, url, "state=")
	assert.Len(t, f.states.States, 1)
}

func TestAuthService_FederatedLogin_CreatesVerifiedUser(t *testing.T) {
	var created *models.User
	f := newAuthFixture(&MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "user456"
			created = user
			return user, nil
		},
	})
	f.states.Put(context.Background(), "state-1")
	f.provider.ExchangeFunc = func(ctx context.Context, code string) (*models.GoogleProfile, error) {
		return &models.GoogleProfile{
			Subject: "google-sub-1",
			Email:   "Alice@Example.com",
			Name:    "Alice",
			Picture: "https://lh3.example/alice.png",
		}, nil
	}

	resp, err := f.svc.FederatedLogin(context.Background(), "state-1", "auth-code")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, created)
	assert.True(t, created.Verified, "federated accounts are born verified")
	assert.Equal(t, "google-sub-1", created.GoogleID)
	assert.Equal(t, "alice@example.com", created.Email)
}

func TestAuthService_FederatedLogin_ReusesExistingSubject(t *testing.T) {
	user := verifiedUser("user@example.com")
	user.GoogleID = "google-sub-1"

	createCalled := false
	f := newAuthFixture(&MockUserRepository{
		GetByGoogleIDFunc: func(ctx context.Context, googleID string) (*models.User, error) {
			return user, nil
		},
		CreateFunc: func(ctx context.Context, u *models.User) (*models.User, error) {
			createCalled = true
			return u, nil
		},
	})
	f.states.Put(context.Background(), "state-1")
	f.provider.ExchangeFunc = func(ctx context.Context, code string) (*models.GoogleProfile, error) {
		return &models.GoogleProfile{Subject: "google-sub-1", Email: "user@example.com"}, nil
	}

	resp, err := f.svc.FederatedLogin(context.Background(), "state-1", "auth-code")

	require.NoError(t, err)
	assert.Equal(t, "user123", resp.User.ID)
	assert.False(t, createCalled, "repeat federated login must not create a duplicate")
}

func TestAuthService_FederatedLogin_LinksExistingEmailAccount(t *testing.T) {
	user := verifiedUser("user@example.com")

	f := newAuthFixture(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
		LinkGoogleIDFunc: func(ctx context.Context, id, googleID string) (*models.User, error) {
			user.GoogleID = googleID
			return user, nil
		},
	})
	f.states.Put(context.Background(), "state-1")
	f.provider.ExchangeFunc = func(ctx context.Context, code string) (*models.GoogleProfile, error) {
		return &models.GoogleProfile{Subject: "google-sub-1", Email: "user@example.com"}, nil
	}

	resp, err := f.svc.FederatedLogin(context.Background(), "state-1", "auth-code")

	require.NoError(t, err)
	assert.Equal(t, "user123", resp.User.ID)
	assert.Equal(t, "google-sub-1", user.GoogleID)
}

func TestAuthService_FederatedLogin_RejectsUnknownState(t *testing.T) {
	f := newAuthFixture(&MockUserRepository{})

	_, err := f.svc.FederatedLogin(context.Background(), "never-issued", "auth-code")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthService_FederatedLogin_StateIsSingleUse(t *testing.T) {
	f := newAuthFixture(&MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "user456"
			return user, nil
		},
	})
	f.states.Put(context.Background(), "state-1")
	f.provider.ExchangeFunc = func(ctx context.Context, code string) (*models.GoogleProfile, error) {
		return &models.GoogleProfile{Subject: "google-sub-1"}, nil
	}

	_, err := f.svc.FederatedLogin(context.Background(), "state-1", "auth-code")
	require.NoError(t, err)

	_, err = f.svc.FederatedLogin(context.Background(), "state-1", "auth-code")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
