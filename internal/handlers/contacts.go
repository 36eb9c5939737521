package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"rolodex/internal/auth"
	"rolodex/internal/models"
	pkghttp "rolodex/pkg/http"
)

// ContactServiceInterface defines the interface for contact business logic
type ContactServiceInterface interface {
	Create(ctx context.Context, ownerID string, contact *models.Contact) (*models.Contact, error)
	Get(ctx context.Context, ownerID, id string) (*models.Contact, error)
	List(ctx context.Context, ownerID, search string, page, limit int) (*models.ContactPage, error)
	Update(ctx context.Context, ownerID, id string, contact *models.Contact) (*models.Contact, error)
	Delete(ctx context.Context, ownerID, id string) error
	BulkDelete(ctx context.Context, ownerID string, ids []string, search string) (int64, error)
	ImportCSV(ctx context.Context, ownerID string, r io.Reader) (int64, int, error)
	ExportCSV(ctx context.Context, ownerID string, w io.Writer) error
	AttachPicture(ctx context.Context, ownerID, id, filename string, size int64, file io.Reader) (*models.Contact, error)
}

// ContactHandler handles contact-related HTTP requests
type ContactHandler struct {
	service ContactServiceInterface
}

func NewContactHandler(service ContactServiceInterface) *ContactHandler {
	return &ContactHandler{service: service}
}

type ContactRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=30"`
}

type BulkDeleteRequest struct {
	IDs    []string `json:"ids"`
	Search string   `json:"search"`
}

// multipartMemory is the in-memory buffer for multipart parsing; larger
// parts spill to disk.
const multipartMemory = 1 << 20

// decodeContactRequest accepts both JSON bodies and multipart forms. The
// multipart form may carry an optional "picture" file alongside the fields.
func decodeContactRequest(r *http.Request) (*ContactRequest, *multipart.FileHeader, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, nil, err
		}
		req := &ContactRequest{
			Name:  r.FormValue("name"),
			Email: r.FormValue("email"),
			Phone: r.FormValue("phone"),
		}

		var header *multipart.FileHeader
		if file, fh, err := r.FormFile("picture"); err == nil {
			file.Close()
			header = fh
		}
		return req, header, nil
	}

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, err
	}
	return &req, nil, nil
}

func ownerID(r *http.Request) string {
	return auth.UserFromContext(r.Context()).ID
}

// Create adds a contact, optionally with a picture when sent as multipart.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, picture, err := decodeContactRequest(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(*req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	contact, err := h.service.Create(r.Context(), ownerID(r), &models.Contact{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Phone: strings.TrimSpace(req.Phone),
	})
	if err != nil {
		writeContactError(w, err)
		return
	}

	if picture != nil {
		contact, err = h.attachPicture(r, contact.ID, picture)
		if err != nil {
			writeContactError(w, err)
			return
		}
	}

	pkghttp.WriteJSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) attachPicture(r *http.Request, contactID string, header *multipart.FileHeader) (*models.Contact, error) {
	file, err := header.Open()
	if err != nil {
		return nil, models.ErrBadRequest
	}
	defer file.Close()

	return h.service.AttachPicture(r.Context(), ownerID(r), contactID, header.Filename, header.Size, file)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	contact, err := h.service.Get(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeContactError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, contact)
}

// List returns a page of contacts. Supports page, limit, and search query
// parameters.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.service.List(r.Context(), ownerID(r), q.Get("search"), page, limit)
	if err != nil {
		writeContactError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, result)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, picture, err := decodeContactRequest(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(*req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	contact, err := h.service.Update(r.Context(), ownerID(r), id, &models.Contact{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Phone: strings.TrimSpace(req.Phone),
	})
	if err != nil {
		writeContactError(w, err)
		return
	}

	if picture != nil {
		contact, err = h.attachPicture(r, id, picture)
		if err != nil {
			writeContactError(w, err)
			return
		}
	}

	pkghttp.WriteJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), ownerID(r), chi.URLParam(r, "id")); err != nil {
		writeContactError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Contact deleted"})
}

// BulkDelete removes contacts by explicit ids or by search term.
func (h *ContactHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	deleted, err := h.service.BulkDelete(r.Context(), ownerID(r), req.IDs, req.Search)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Provide either ids or a search term, not both")
			return
		}
		writeContactError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// BulkUpload imports contacts from an uploaded CSV file.
func (h *ContactHandler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		pkghttp.WriteBadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	if ext := strings.ToLower(header.Filename); !strings.HasSuffix(ext, ".csv") {
		pkghttp.WriteBadRequest(w, "Only CSV files are supported")
		return
	}

	imported, skipped, err := h.service.ImportCSV(r.Context(), ownerID(r), file)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "CSV must have a name column and at least one row with a name")
			return
		}
		writeContactError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"imported": imported,
		"skipped":  skipped,
	})
}

// Export streams the owner's contacts as a CSV attachment.
func (h *ContactHandler) Export(w http.ResponseWriter, r *http.Request) {
	filename := "contacts-" + time.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.service.ExportCSV(r.Context(), ownerID(r), w); err != nil {
		// ExportCSV loads the rows before writing anything, so the
		// not-found path fails before the body is touched.
		w.Header().Del("Content-Disposition")
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "No contacts to export")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

func writeContactError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Contact not found")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
