package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"authgate/internal/models"
)

// ErrEmailTaken maps the unique constraint on users.email.
var ErrEmailTaken = errors.New("email already exists")

const userColumns = `id, name, email, password_hash, role, account_type, account_status, email_verified, profile_complete, token_version, created_at, updated_at`

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ExistsByEmail(email string) (bool, error)

	// Single-statement mutations: the version bump must not be a
	// read-then-write sequence, two concurrent logins would lose an update.
	BumpTokenVersion(id string) (*models.User, error)
	BumpForSocialLogin(email string) (*models.User, error)
	ResetPassword(email, passwordHash string) error
	MarkEmailVerified(email string) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	const q = `
		INSERT INTO users (
			id, name, email, password_hash, role,
			account_type, account_status, email_verified, profile_complete
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING token_version, created_at, updated_at
	`
	err := r.DB.QueryRow(q,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.AccountType,
		user.AccountStatus,
		user.EmailVerified,
		user.ProfileComplete,
	).Scan(&user.TokenVersion, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(id string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.DB.QueryRow(q, id))
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRow(q, email))
}

func (r *userRepository) ExistsByEmail(email string) (bool, error) {
	var one int
	err := r.DB.QueryRow(`SELECT 1 FROM users WHERE email = $1`, email).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return true, nil
}

func (r *userRepository) BumpTokenVersion(id string) (*models.User, error) {
	const q = `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return r.scanOne(r.DB.QueryRow(q, id))
}

func (r *userRepository) BumpForSocialLogin(email string) (*models.User, error) {
	const q = `
		UPDATE users
		SET token_version = token_version + 1, email_verified = TRUE, updated_at = NOW()
		WHERE email = $1
		RETURNING ` + userColumns
	return r.scanOne(r.DB.QueryRow(q, email))
}

func (r *userRepository) ResetPassword(email, passwordHash string) error {
	const q = `
		UPDATE users
		SET password_hash = $1, token_version = token_version + 1, updated_at = NOW()
		WHERE email = $2
	`
	if _, err := r.DB.Exec(q, passwordHash, email); err != nil {
		return fmt.Errorf("user reset password: %w", err)
	}
	return nil
}

func (r *userRepository) MarkEmailVerified(email string) error {
	const q = `UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE email = $1`
	if _, err := r.DB.Exec(q, email); err != nil {
		return fmt.Errorf("user mark verified: %w", err)
	}
	return nil
}

func (r *userRepository) scanOne(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.AccountType, &u.AccountStatus, &u.EmailVerified, &u.ProfileComplete,
		&u.TokenVersion, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user scan: %w", err)
	}
	return u, nil
}
