package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"authgate/internal/models"
	"authgate/internal/repositories"
)

// ErrInvalidToken covers every validation failure: bad signature, bad
// format, expiry, unknown subject, and stale token version. Callers never
// learn which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

const tokenTTL = 7 * 24 * time.Hour

type Claims struct {
	Role         string `json:"role"`
	Email        string `json:"email"`
	TokenVersion int    `json:"tokenVersion"`
	jwt.RegisteredClaims
}

type TokenService interface {
	Issue(user *models.User) (string, error)
	// Validate verifies signature and expiry, then resolves the subject and
	// rejects the token if the user's current token_version has moved past
	// the embedded one. The version comparison is the only revocation
	// mechanism; there is no blacklist.
	Validate(tokenString string) (*models.User, error)
}

type tokenService struct {
	secret []byte
	users  repositories.UserRepository
}

func NewTokenService(secret string, users repositories.UserRepository) TokenService {
	return &tokenService{secret: []byte(secret), users: users}
}

func (s *tokenService) Issue(user *models.User) (string, error) {
	claims := &Claims{
		Role:         user.Role,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *tokenService) Validate(tokenString string) (*models.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// HMAC only; reject tokens that claim another algorithm
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrInvalidToken
	}
	return user, nil
}
