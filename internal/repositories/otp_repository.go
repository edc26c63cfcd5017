package repositories

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"authgate/internal/models"
)

type OtpRepository interface {
	// Replace deletes any previous code for (email, purpose) and inserts
	// the new one in a single transaction, so at most one live code exists
	// per pair.
	Replace(code *models.OtpCode) error
	GetLatest(email, purpose string) (*models.OtpCode, error)
	Delete(id string) error
}

type otpRepository struct {
	DB *sql.DB
}

func NewOtpRepository(db *sql.DB) OtpRepository {
	return &otpRepository{DB: db}
}

func (r *otpRepository) Replace(code *models.OtpCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("otp replace begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM otp_codes WHERE email = $1 AND type = $2`, code.Email, code.Purpose); err != nil {
		return fmt.Errorf("otp replace delete: %w", err)
	}

	const q = `
		INSERT INTO otp_codes (id, email, type, code_hash, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	if err := tx.QueryRow(q, code.ID, code.Email, code.Purpose, code.CodeHash, code.ExpiresAt).Scan(&code.CreatedAt); err != nil {
		return fmt.Errorf("otp replace insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("otp replace commit: %w", err)
	}
	return nil
}

func (r *otpRepository) GetLatest(email, purpose string) (*models.OtpCode, error) {
	const q = `
		SELECT id, email, type, code_hash, expires_at, created_at
		FROM otp_codes
		WHERE email = $1 AND type = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	var c models.OtpCode
	err := r.DB.QueryRow(q, email, purpose).Scan(&c.ID, &c.Email, &c.Purpose, &c.CodeHash, &c.ExpiresAt, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("otp latest: %w", err)
	}
	return &c, nil
}

func (r *otpRepository) Delete(id string) error {
	if _, err := r.DB.Exec(`DELETE FROM otp_codes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("otp delete: %w", err)
	}
	return nil
}
