package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	AccountTypeFree    = "free"
	AccountTypePremium = "premium"
)

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"` // never leaves the server
	Role            string    `json:"role"`
	AccountType     string    `json:"accountType"`
	AccountStatus   bool      `json:"accountStatus"`
	EmailVerified   bool      `json:"emailVerified"`
	ProfileComplete bool      `json:"profileComplete"`
	TokenVersion    int       `json:"-"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// PublicUser is the representation returned by the API.
type PublicUser struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	AccountType     string `json:"accountType"`
	AccountStatus   bool   `json:"accountStatus"`
	EmailVerified   bool   `json:"emailVerified"`
	ProfileComplete bool   `json:"profileComplete"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		AccountType:     u.AccountType,
		AccountStatus:   u.AccountStatus,
		EmailVerified:   u.EmailVerified,
		ProfileComplete: u.ProfileComplete,
	}
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	AccountType     string `json:"accountType"`
	AccountStatus   *bool  `json:"accountStatus"`
	EmailVerified   *bool  `json:"emailVerified"`
	ProfileComplete *bool  `json:"profileComplete"`
}

type RegisterAdminRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	SecurityCode string `json:"securityCode"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SocialLoginRequest struct {
	Provider string `json:"provider"`
	IDToken  string `json:"idToken"`
}
