package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rolodex/internal/database"
	"rolodex/internal/models"
)

const userColumns = `id, name, email, password_hash, google_id, picture, role, verified, created_at, updated_at`

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var email, passwordHash, googleID *string

	err := scanner.Scan(
		&user.ID, &user.Name, &email, &passwordHash, &googleID,
		&user.Picture, &user.Role, &user.Verified,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if email != nil {
		user.Email = *email
	}
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	if googleID != nil {
		user.GoogleID = *googleID
	}

	return &user, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Picture == "" {
		user.Picture = models.DefaultPicture
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, google_id, picture, role, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.ID, user.Name, nullable(user.Email), nullable(user.PasswordHash),
		nullable(user.GoogleID), user.Picture, user.Role, user.Verified,
		user.CreatedAt, user.UpdatedAt,
	))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, id))
}

// GetByEmail matches case-insensitively; emails are unique under LOWER().
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, googleID))
}

// SetVerified flips the verification flag after a successful OTP check.
func (r *UserRepository) SetVerified(ctx context.Context, id string) (*models.User, error) {
	query := `
		UPDATE users SET verified = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query, id))
}

// LinkGoogleID attaches a federated identity to an existing account.
func (r *UserRepository) LinkGoogleID(ctx context.Context, id, googleID string) (*models.User, error) {
	query := `
		UPDATE users SET google_id = $1, verified = TRUE, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query, googleID, id))
}

func (r *UserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	query := `
		UPDATE users SET name = $1, picture = $2, role = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query, user.Name, user.Picture, user.Role, id))
}
