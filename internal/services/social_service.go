package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ProviderGoogle = "google"
	ProviderApple  = "apple"

	googleJwksURL = "https://www.googleapis.com/oauth2/v3/certs"
	appleJwksURL  = "https://appleid.apple.com/auth/keys"
)

var (
	// ErrSocialVerification is the single signal for every federated-token
	// failure: signature, audience, issuer, expiry, key fetch.
	ErrSocialVerification = errors.New("social login failed")
	ErrUnknownProvider    = errors.New("invalid provider")
	ErrEmailUnavailable   = errors.New("email not available in token")
)

// Identity is what a verified provider token asserts about its holder.
type Identity struct {
	Email string
	Name  string
}

type IdentityVerifier interface {
	Verify(provider, idToken string) (*Identity, error)
}

type providerKeys struct {
	clientID string
	issuers  []string
	keys     keyfunc.Keyfunc
}

// jwksVerifier validates provider id tokens against each provider's
// published JWKS. keyfunc caches the key set and refreshes it in the
// background, so a key rotation does not need a restart.
type jwksVerifier struct {
	providers map[string]*providerKeys
}

func NewJwksVerifier(googleClientID, appleClientID string) (IdentityVerifier, error) {
	googleKeys, err := keyfunc.NewDefault([]string{googleJwksURL})
	if err != nil {
		return nil, fmt.Errorf("google jwks: %w", err)
	}
	appleKeys, err := keyfunc.NewDefault([]string{appleJwksURL})
	if err != nil {
		return nil, fmt.Errorf("apple jwks: %w", err)
	}

	return &jwksVerifier{
		providers: map[string]*providerKeys{
			ProviderGoogle: {
				clientID: googleClientID,
				issuers:  []string{"https://accounts.google.com", "accounts.google.com"},
				keys:     googleKeys,
			},
			ProviderApple: {
				clientID: appleClientID,
				issuers:  []string{"https://appleid.apple.com"},
				keys:     appleKeys,
			},
		},
	}, nil
}

func (v *jwksVerifier) Verify(provider, idToken string) (*Identity, error) {
	p, ok := v.providers[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, p.keys.Keyfunc,
		jwt.WithAudience(p.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrSocialVerification
	}

	issuer, err := claims.GetIssuer()
	if err != nil || !containsString(p.issuers, issuer) {
		return nil, ErrSocialVerification
	}

	return identityFromClaims(claims)
}

func identityFromClaims(claims jwt.MapClaims) (*Identity, error) {
	email, _ := claims["email"].(string)
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, ErrEmailUnavailable
	}
	return &Identity{Email: email, Name: displayName(claims)}, nil
}

func displayName(claims jwt.MapClaims) string {
	if name, _ := claims["name"].(string); name != "" {
		return name
	}
	given, _ := claims["given_name"].(string)
	family, _ := claims["family_name"].(string)
	if combined := strings.TrimSpace(given + " " + family); combined != "" {
		return combined
	}
	return "User"
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// NormalizeProvider returns the canonical provider name or "".
func NormalizeProvider(value string) string {
	switch value {
	case ProviderGoogle:
		return ProviderGoogle
	case ProviderApple:
		return ProviderApple
	}
	return ""
}
