package services

import (
	"context"
	"io"

	"rolodex/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc       func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	GetByGoogleIDFunc func(ctx context.Context, googleID string) (*models.User, error)
	CreateFunc        func(ctx context.Context, user *models.User) (*models.User, error)
	SetVerifiedFunc   func(ctx context.Context, id string) (*models.User, error)
	LinkGoogleIDFunc  func(ctx context.Context, id, googleID string) (*models.User, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	if m.GetByGoogleIDFunc != nil {
		return m.GetByGoogleIDFunc(ctx, googleID)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) SetVerified(ctx context.Context, id string) (*models.User, error) {
	if m.SetVerifiedFunc != nil {
		return m.SetVerifiedFunc(ctx, id)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) LinkGoogleID(ctx context.Context, id, googleID string) (*models.User, error) {
	if m.LinkGoogleIDFunc != nil {
		return m.LinkGoogleIDFunc(ctx, id, googleID)
	}
	return nil, models.ErrInternalServer
}

// MockOTPStore implements OTPStore for testing. The zero value behaves like
// an empty store; Codes seeds live codes keyed by email.
type MockOTPStore struct {
	Codes      map[string]string
	PutFunc    func(ctx context.Context, email, code string) error
	DeleteFunc func(ctx context.Context, email string) error
}

func (m *MockOTPStore) Put(ctx context.Context, email, code string) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, email, code)
	}
	if m.Codes == nil {
		m.Codes = map[string]string{}
	}
	m.Codes[email] = code
	return nil
}

func (m *MockOTPStore) Get(ctx context.Context, email string) (string, error) {
	code, ok := m.Codes[email]
	if !ok {
		return "", models.ErrNotFound
	}
	return code, nil
}

func (m *MockOTPStore) Delete(ctx context.Context, email string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, email)
	}
	delete(m.Codes, email)
	return nil
}

// MockStateStore implements StateStore for testing
type MockStateStore struct {
	States map[string]bool
}

func (m *MockStateStore) Put(ctx context.Context, state string) error {
	if m.States == nil {
		m.States = map[string]bool{}
	}
	m.States[state] = true
	return nil
}

func (m *MockStateStore) Consume(ctx context.Context, state string) (bool, error) {
	if !m.States[state] {
		return false, nil
	}
	delete(m.States, state)
	return true, nil
}

// MockNotifier implements Notifier for testing
type MockNotifier struct {
	SendOTPEmailFunc func(ctx context.Context, email, name, code string) error
	Sent             []string // codes in send order
}

func (m *MockNotifier) SendOTPEmail(ctx context.Context, email, name, code string) error {
	if m.SendOTPEmailFunc != nil {
		return m.SendOTPEmailFunc(ctx, email, name, code)
	}
	m.Sent = append(m.Sent, code)
	return nil
}

// MockIdentityProvider implements auth.IdentityProvider for testing
type MockIdentityProvider struct {
	AuthCodeURLFunc func(state string) string
	ExchangeFunc    func(ctx context.Context, code string) (*models.GoogleProfile, error)
}

func (m *MockIdentityProvider) AuthCodeURL(state string) string {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(state)
	}
	return "https://accounts.example.com/consent?state=" + state
}

func (m *MockIdentityProvider) Exchange(ctx context.Context, code string) (*models.GoogleProfile, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	return nil, models.ErrUnauthorized
}

// MockContactRepository implements ContactRepository for testing
type MockContactRepository struct {
	CreateFunc         func(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	GetByIDFunc        func(ctx context.Context, ownerID, id string) (*models.Contact, error)
	ListFunc           func(ctx context.Context, ownerID, search string, page, limit int) (*models.ContactPage, error)
	ListAllFunc        func(ctx context.Context, ownerID string) ([]*models.Contact, error)
	UpdateFunc         func(ctx context.Context, ownerID, id string, contact *models.Contact) (*models.Contact, error)
	SetPictureFunc     func(ctx context.Context, ownerID, id, pictureURL string) (*models.Contact, error)
	DeleteFunc         func(ctx context.Context, ownerID, id string) error
	DeleteByIDsFunc    func(ctx context.Context, ownerID string, ids []string) (int64, error)
	DeleteBySearchFunc func(ctx context.Context, ownerID, search string) (int64, error)
	CreateBatchFunc    func(ctx context.Context, ownerID string, contacts []*models.Contact) (int64, error)
}

func (m *MockContactRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, contact)
	}
	return nil, models.ErrInternalServer
}

func (m *MockContactRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Contact, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, ownerID, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockContactRepository) List(ctx context.Context, ownerID, search string, page, limit int) (*models.ContactPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, search, page, limit)
	}
	return &models.ContactPage{Docs: []*models.Contact{}, Page: page, Limit: limit}, nil
}

func (m *MockContactRepository) ListAll(ctx context.Context, ownerID string) ([]*models.Contact, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, ownerID)
	}
	return []*models.Contact{}, nil
}

func (m *MockContactRepository) Update(ctx context.Context, ownerID, id string, contact *models.Contact) (*models.Contact, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, ownerID, id, contact)
	}
	return nil, models.ErrNotFound
}

func (m *MockContactRepository) SetPicture(ctx context.Context, ownerID, id, pictureURL string) (*models.Contact, error) {
	if m.SetPictureFunc != nil {
		return m.SetPictureFunc(ctx, ownerID, id, pictureURL)
	}
	return nil, models.ErrNotFound
}

func (m *MockContactRepository) Delete(ctx context.Context, ownerID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ownerID, id)
	}
	return models.ErrNotFound
}

func (m *MockContactRepository) DeleteByIDs(ctx context.Context, ownerID string, ids []string) (int64, error) {
	if m.DeleteByIDsFunc != nil {
		return m.DeleteByIDsFunc(ctx, ownerID, ids)
	}
	return 0, nil
}

func (m *MockContactRepository) DeleteBySearch(ctx context.Context, ownerID, search string) (int64, error) {
	if m.DeleteBySearchFunc != nil {
		return m.DeleteBySearchFunc(ctx, ownerID, search)
	}
	return 0, nil
}

func (m *MockContactRepository) CreateBatch(ctx context.Context, ownerID string, contacts []*models.Contact) (int64, error) {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, ownerID, contacts)
	}
	return int64(len(contacts)), nil
}

// MockObjectUploader implements ObjectUploader for testing
type MockObjectUploader struct {
	UploadFunc func(ctx context.Context, body io.Reader, ext, contentType string) (string, error)
}

func (m *MockObjectUploader) Upload(ctx context.Context, body io.Reader, ext, contentType string) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, body, ext, contentType)
	}
	return "https://cdn.example.com/pictures/test" + ext, nil
}
