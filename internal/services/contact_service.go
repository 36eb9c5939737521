package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"rolodex/internal/models"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	// MaxPictureSize caps contact picture uploads at 5 MB.
	MaxPictureSize = 5 << 20
)

var allowedPictureExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ContactRepository defines the interface for contact data access
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Contact, error)
	List(ctx context.Context, ownerID, search string, page, limit int) (*models.ContactPage, error)
	ListAll(ctx context.Context, ownerID string) ([]*models.Contact, error)
	Update(ctx context.Context, ownerID, id string, contact *models.Contact) (*models.Contact, error)
	SetPicture(ctx context.Context, ownerID, id, pictureURL string) (*models.Contact, error)
	Delete(ctx context.Context, ownerID, id string) error
	DeleteByIDs(ctx context.Context, ownerID string, ids []string) (int64, error)
	DeleteBySearch(ctx context.Context, ownerID, search string) (int64, error)
	CreateBatch(ctx context.Context, ownerID string, contacts []*models.Contact) (int64, error)
}

// ContactService handles contact business logic. Every operation is scoped
// to the owning user; contacts of other users read as not found.
type ContactService struct {
	repo    ContactRepository
	storage ObjectUploader
	logger  *slog.Logger
}

func NewContactService(repo ContactRepository, storage ObjectUploader, logger *slog.Logger) *ContactService {
	return &ContactService{
		repo:    repo,
		storage: storage,
		logger:  logger,
	}
}

func (s *ContactService) Create(ctx context.Context, ownerID string, contact *models.Contact) (*models.Contact, error) {
	contact.OwnerID = ownerID

	created, err := s.repo.Create(ctx, contact)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			return nil, models.ErrBadRequest
		}
		s.logger.Error("failed to create contact", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return created, nil
}

func (s *ContactService) Get(ctx context.Context, ownerID, id string) (*models.Contact, error) {
	contact, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get contact", slog.String("contact_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return contact, nil
}

func (s *ContactService) List(ctx context.Context, ownerID, search string, page, limit int) (*models.ContactPage, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	result, err := s.repo.List(ctx, ownerID, strings.TrimSpace(search), page, limit)
	if err != nil {
		s.logger.Error("failed to list contacts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return result, nil
}

func (s *ContactService) Update(ctx context.Context, ownerID, id string, contact *models.Contact) (*models.Contact, error) {
	updated, err := s.repo.Update(ctx, ownerID, id, contact)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update contact", slog.String("contact_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return updated, nil
}

func (s *ContactService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete contact", slog.String("contact_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// BulkDelete removes contacts either by explicit ids or by a search term.
// Exactly one selector must be provided.
func (s *ContactService) BulkDelete(ctx context.Context, ownerID string, ids []string, search string) (int64, error) {
	search = strings.TrimSpace(search)

	if (len(ids) == 0) == (search == "") {
		return 0, models.ErrBadRequest
	}

	var (
		deleted int64
		err     error
	)
	if len(ids) > 0 {
		deleted, err = s.repo.DeleteByIDs(ctx, ownerID, ids)
	} else {
		deleted, err = s.repo.DeleteBySearch(ctx, ownerID, search)
	}
	if err != nil {
		s.logger.Error("failed to bulk delete contacts", slog.Any("error", err))
		return 0, models.ErrInternalServer
	}

	s.logger.Info("contacts bulk deleted", slog.Int64("count", deleted))
	return deleted, nil
}

// ImportCSV reads a name,email,phone CSV and inserts the rows in one batch.
// Header matching is case-insensitive and column order does not matter.
// Rows without a name are skipped and counted.
func (s *ContactService) ImportCSV(ctx context.Context, ownerID string, r io.Reader) (imported int64, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, 0, models.ErrBadRequest
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameIdx, ok := cols["name"]
	if !ok {
		return 0, 0, models.ErrBadRequest
	}
	emailIdx, hasEmail := cols["email"]
	phoneIdx, hasPhone := cols["phone"]

	field := func(record []string, idx int) string {
		if idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var contacts []*models.Contact
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, 0, models.ErrBadRequest
		}

		name := field(record, nameIdx)
		if name == "" {
			skipped++
			continue
		}

		c := &models.Contact{Name: name}
		if hasEmail {
			c.Email = field(record, emailIdx)
		}
		if hasPhone {
			c.Phone = field(record, phoneIdx)
		}
		contacts = append(contacts, c)
	}

	if len(contacts) == 0 {
		return 0, skipped, models.ErrBadRequest
	}

	imported, err = s.repo.CreateBatch(ctx, ownerID, contacts)
	if err != nil {
		s.logger.Error("failed to import contacts", slog.Any("error", err))
		return 0, skipped, models.ErrInternalServer
	}

	s.logger.Info("contacts imported", slog.Int64("count", imported), slog.Int("skipped", skipped))
	return imported, skipped, nil
}

// ExportCSV writes the owner's contacts as name,email,phone,created_at.
// Returns ErrNotFound when there is nothing to export.
func (s *ContactService) ExportCSV(ctx context.Context, ownerID string, w io.Writer) error {
	contacts, err := s.repo.ListAll(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to load contacts for export", slog.Any("error", err))
		return models.ErrInternalServer
	}
	if len(contacts) == 0 {
		return models.ErrNotFound
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"name", "email", "phone", "created_at"}); err != nil {
		return models.ErrInternalServer
	}
	for _, c := range contacts {
		row := []string{c.Name, c.Email, c.Phone, c.CreatedAt.Format(time.RFC3339)}
		if err := writer.Write(row); err != nil {
			return models.ErrInternalServer
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return models.ErrInternalServer
	}
	return nil
}

// AttachPicture validates, uploads, and persists a contact picture.
func (s *ContactService) AttachPicture(ctx context.Context, ownerID, id, filename string, size int64, file io.Reader) (*models.Contact, error) {
	ext, err := validatePicture(filename, size)
	if err != nil {
		return nil, err
	}

	// Ensure the contact exists and is owned before paying for the upload.
	if _, err := s.repo.GetByID(ctx, ownerID, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get contact", slog.String("contact_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := s.storage.Upload(ctx, io.LimitReader(file, MaxPictureSize), ext, contentType)
	if err != nil {
		return nil, models.ErrInternalServer
	}

	contact, err := s.repo.SetPicture(ctx, ownerID, id, url)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to persist picture url", slog.String("contact_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return contact, nil
}

func validatePicture(filename string, size int64) (string, error) {
	if size > MaxPictureSize {
		return "", fmt.Errorf("%w: picture exceeds 5MB", models.ErrBadRequest)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedPictureExts[ext] {
		return "", fmt.Errorf("%w: unsupported picture type %q", models.ErrBadRequest, ext)
	}
	return ext, nil
}
