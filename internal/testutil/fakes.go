// Package testutil provides in-memory doubles for the Postgres
// repositories and the outbound collaborators, so service and handler
// tests run without a database or SMTP server. The user store guards all
// mutations with one mutex and bumps versions inside the lock, mirroring
// the single-statement atomicity the SQL layer gets from the database.
package testutil

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"authgate/internal/models"
	"authgate/internal/repositories"
)

type FakeUserRepository struct {
	mu    sync.Mutex
	users map[string]*models.User // keyed by id
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{users: map[string]*models.User{}}
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

func (r *FakeUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrEmailTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.TokenVersion = 0
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *FakeUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyUser(r.users[id]), nil
}

func (r *FakeUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyUser(r.findByEmail(email)), nil
}

func (r *FakeUserRepository) ExistsByEmail(email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findByEmail(email) != nil, nil
}

func (r *FakeUserRepository) BumpTokenVersion(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	u.TokenVersion++
	u.UpdatedAt = time.Now()
	return copyUser(u), nil
}

func (r *FakeUserRepository) BumpForSocialLogin(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.findByEmail(email)
	if u == nil {
		return nil, nil
	}
	u.TokenVersion++
	u.EmailVerified = true
	u.UpdatedAt = time.Now()
	return copyUser(u), nil
}

func (r *FakeUserRepository) ResetPassword(email, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.findByEmail(email)
	if u == nil {
		return errors.New("no such user")
	}
	u.PasswordHash = passwordHash
	u.TokenVersion++
	u.UpdatedAt = time.Now()
	return nil
}

func (r *FakeUserRepository) MarkEmailVerified(email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.findByEmail(email); u != nil {
		u.EmailVerified = true
	}
	return nil
}

func (r *FakeUserRepository) findByEmail(email string) *models.User {
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

type FakeOtpRepository struct {
	mu    sync.Mutex
	codes map[string]*models.OtpCode // keyed by email|purpose
}

func NewFakeOtpRepository() *FakeOtpRepository {
	return &FakeOtpRepository{codes: map[string]*models.OtpCode{}}
}

func otpKey(email, purpose string) string { return email + "|" + purpose }

func (r *FakeOtpRepository) Replace(code *models.OtpCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	code.CreatedAt = time.Now()
	cp := *code
	r.codes[otpKey(code.Email, code.Purpose)] = &cp
	return nil
}

func (r *FakeOtpRepository) GetLatest(email, purpose string) (*models.OtpCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[otpKey(email, purpose)]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *FakeOtpRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, c := range r.codes {
		if c.ID == id {
			delete(r.codes, k)
		}
	}
	return nil
}

// Expire backdates the stored code for the pair, simulating the passage of
// time past its expiry.
func (r *FakeOtpRepository) Expire(email, purpose string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.codes[otpKey(email, purpose)]; ok {
		c.ExpiresAt = time.Now().Add(-time.Minute)
	}
}

func (r *FakeOtpRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.codes)
}

// RecordingEmailService captures outbound OTP mail instead of dialing SMTP.
type RecordingEmailService struct {
	mu   sync.Mutex
	Sent []SentOtp
	Err  error
}

type SentOtp struct {
	Email   string
	Code    string
	Purpose string
	Minutes int
}

func (s *RecordingEmailService) SendOtpEmail(email, code, purpose string, expiresInMinutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, SentOtp{Email: email, Code: code, Purpose: purpose, Minutes: expiresInMinutes})
	return nil
}

// LastCode returns the plaintext of the most recently delivered code.
func (s *RecordingEmailService) LastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Sent) == 0 {
		return ""
	}
	return s.Sent[len(s.Sent)-1].Code
}
