package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"rolodex/internal/database"
	"rolodex/internal/models"
)

const contactColumns = `id, owner_id, name, email, phone, picture, created_at, updated_at`

type ContactRepository struct {
	db *database.DB
}

func NewContactRepository(db *database.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func scanContactRow(scanner rowScanner) (*models.Contact, error) {
	var c models.Contact
	err := scanner.Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.Picture,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}

// escapePattern neutralizes LIKE metacharacters in user-supplied search terms.
func escapePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	contact.ID = uuid.New().String()

	now := time.Now()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	query := `
		INSERT INTO contacts (id, owner_id, name, email, phone, picture, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + contactColumns

	return scanContactRow(r.db.Pool.QueryRow(ctx, query,
		contact.ID, contact.OwnerID, contact.Name, contact.Email,
		contact.Phone, contact.Picture, contact.CreatedAt, contact.UpdatedAt,
	))
}

// GetByID is owner-scoped; a contact belonging to someone else reads as not found.
func (r *ContactRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND owner_id = $2`
	return scanContactRow(r.db.Pool.QueryRow(ctx, query, id, ownerID))
}

// List returns one page of the owner's contacts, newest first. A non-empty
// search term filters on name, email, and phone.
func (r *ContactRepository) List(ctx context.Context, ownerID, search string, page, limit int) (*models.ContactPage, error) {
	where := `WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if search != "" {
		where += ` AND (name ILIKE $2 OR email ILIKE $2 OR phone ILIKE $2)`
		args = append(args, escapePattern(search))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM contacts ` + where
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, database.MapPostgresError(err)
	}

	offset := (page - 1) * limit
	listQuery := fmt.Sprintf(
		`SELECT %s FROM contacts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		contactColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.db.Pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	docs, err := collectContacts(rows)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &models.ContactPage{
		Docs:       docs,
		TotalDocs:  total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// ListAll streams every contact for an owner, oldest first. Used for exports.
func (r *ContactRepository) ListAll(ctx context.Context, ownerID string) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	return collectContacts(rows)
}

func collectContacts(rows pgx.Rows) ([]*models.Contact, error) {
	docs := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContactRow(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return docs, nil
}

func (r *ContactRepository) Update(ctx context.Context, ownerID, id string, contact *models.Contact) (*models.Contact, error) {
	query := `
		UPDATE contacts SET name = $1, email = $2, phone = $3, updated_at = NOW()
		WHERE id = $4 AND owner_id = $5
		RETURNING ` + contactColumns

	return scanContactRow(r.db.Pool.QueryRow(ctx, query,
		contact.Name, contact.Email, contact.Phone, id, ownerID,
	))
}

func (r *ContactRepository) SetPicture(ctx context.Context, ownerID, id, pictureURL string) (*models.Contact, error) {
	query := `
		UPDATE contacts SET picture = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
		RETURNING ` + contactColumns

	return scanContactRow(r.db.Pool.QueryRow(ctx, query, pictureURL, id, ownerID))
}

func (r *ContactRepository) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM contacts WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteByIDs removes the owner's contacts matching any of the given ids and
// reports how many rows went away. Ids belonging to other owners are ignored.
func (r *ContactRepository) DeleteByIDs(ctx context.Context, ownerID string, ids []string) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM contacts WHERE owner_id = $1 AND id = ANY($2)`, ownerID, ids)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}

// DeleteBySearch removes every contact of the owner matching the search term.
func (r *ContactRepository) DeleteBySearch(ctx context.Context, ownerID, search string) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM contacts WHERE owner_id = $1 AND (name ILIKE $2 OR email ILIKE $2 OR phone ILIKE $2)`,
		ownerID, escapePattern(search))
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}

// CreateBatch inserts imported contacts inside a single transaction so a bad
// row does not leave a partial import behind.
func (r *ContactRepository) CreateBatch(ctx context.Context, ownerID string, contacts []*models.Contact) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	batch := &pgx.Batch{}
	for _, c := range contacts {
		batch.Queue(
			`INSERT INTO contacts (id, owner_id, name, email, phone, picture, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New().String(), ownerID, c.Name, c.Email, c.Phone, c.Picture, now, now,
		)
	}

	results := tx.SendBatch(ctx, batch)
	var inserted int64
	for range contacts {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, database.MapPostgresError(err)
		}
		inserted += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, database.MapPostgresError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, database.MapPostgresError(err)
	}
	return inserted, nil
}
