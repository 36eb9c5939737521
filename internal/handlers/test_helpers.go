package handlers

import (
	"context"
	"io"

	"rolodex/internal/models"
	"rolodex/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	SignupFunc         func(ctx context.Context, name, email, password string) (string, error)
	VerifyOTPFunc      func(ctx context.Context, email, code string) (*services.AuthResponse, error)
	ResendOTPFunc      func(ctx context.Context, email string) error
	LoginFunc          func(ctx context.Context, email, password string) (*services.AuthResponse, error)
	GoogleAuthURLFunc  func(ctx context.Context) (string, error)
	FederatedLoginFunc func(ctx context.Context, state, code string) (*services.AuthResponse, error)
}

func (m *MockAuthService) Signup(ctx context.Context, name, email, password string) (string, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, name, email, password)
	}
	return "", models.ErrInternalServer
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, email, code string) (*services.AuthResponse, error) {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, email, code)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) ResendOTP(ctx context.Context, email string) error {
	if m.ResendOTPFunc != nil {
		return m.ResendOTPFunc(ctx, email)
	}
	return models.ErrInternalServer
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) GoogleAuthURL(ctx context.Context) (string, error) {
	if m.GoogleAuthURLFunc != nil {
		return m.GoogleAuthURLFunc(ctx)
	}
	return "", models.ErrInternalServer
}

func (m *MockAuthService) FederatedLogin(ctx context.Context, state, code string) (*services.AuthResponse, error) {
	if m.FederatedLoginFunc != nil {
		return m.FederatedLoginFunc(ctx, state, code)
	}
	return nil, models.ErrInternalServer
}

// MockResendLimiter implements ResendLimiter for testing
type MockResendLimiter struct {
	AllowFunc func(ctx context.Context, email string) (bool, error)
}

func (m *MockResendLimiter) Allow(ctx context.Context, email string) (bool, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, email)
	}
	return true, nil
}

// MockContactService implements ContactServiceInterface for testing
type MockContactService struct {
	CreateFunc        func(ctx context.Context, ownerID string, contact *models.Contact) (*models.Contact, error)
	GetFunc           func(ctx context.Context, ownerID, id string) (*models.Contact, error)
	ListFunc          func(ctx context.Context, ownerID, search string, page, limit int) (*models.ContactPage, error)
	UpdateFunc        func(ctx context.Context, ownerID, id string, contact *models.Contact) (*models.Contact, error)
	DeleteFunc        func(ctx context.Context, ownerID, id string) error
	BulkDeleteFunc    func(ctx context.Context, ownerID string, ids []string, search string) (int64, error)
	ImportCSVFunc     func(ctx context.Context, ownerID string, r io.Reader) (int64, int, error)
	ExportCSVFunc     func(ctx context.Context, ownerID string, w io.Writer) error
	AttachPictureFunc func(ctx context.Context, ownerID, id, filename string, size int64, file io.Reader) (*models.Contact, error)
}

func (m *MockContactService) Create(ctx context.Context, ownerID string, contact *models.Contact) (*models.Contact, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ownerID, contact)
	}
	return nil, models.ErrInternalServer
}

func (m *MockContactService) Get(ctx context.Context, ownerID, id string) (*models.Contact, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, ownerID, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockContactService) List(ctx context.Context, ownerID, search string, page, limit int) (*models.ContactPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, search, page, limit)
	}
	return &models.ContactPage{Docs: []*models.Contact{}, Page: 1, Limit: 10}, nil
}

func (m *MockContactService) Update(ctx context.Context, ownerID, id string, contact *models.Contact) (*models.Contact, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, ownerID, id, contact)
	}
	return nil, models.ErrNotFound
}

func (m *MockContactService) Delete(ctx context.Context, ownerID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ownerID, id)
	}
	return models.ErrNotFound
}

func (m *MockContactService) BulkDelete(ctx context.Context, ownerID string, ids []string, search string) (int64, error) {
	if m.BulkDeleteFunc != nil {
		return m.BulkDeleteFunc(ctx, ownerID, ids, search)
	}
	return 0, nil
}

func (m *MockContactService) ImportCSV(ctx context.Context, ownerID string, r io.Reader) (int64, int, error) {
	if m.ImportCSVFunc != nil {
		return m.ImportCSVFunc(ctx, ownerID, r)
	}
	return 0, 0, models.ErrBadRequest
}

func (m *MockContactService) ExportCSV(ctx context.Context, ownerID string, w io.Writer) error {
	if m.ExportCSVFunc != nil {
		return m.ExportCSVFunc(ctx, ownerID, w)
	}
	return models.ErrNotFound
}

func (m *MockContactService) AttachPicture(ctx context.Context, ownerID, id, filename string, size int64, file io.Reader) (*models.Contact, error) {
	if m.AttachPictureFunc != nil {
		return m.AttachPictureFunc(ctx, ownerID, id, filename, size, file)
	}
	return nil, models.ErrNotFound
}
