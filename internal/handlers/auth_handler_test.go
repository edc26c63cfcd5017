package handlers_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgate/internal/services"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	w, resp := f.do(t, http.MethodPost, "/auth/register", map[string]any{
		"name":     "  Alice  ",
		"email":    "Alice@Example.COM",
		"password": "p1",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", resp["status"])
	assert.NotEmpty(t, resp["token"])

	user := resp["user"].(map[string]any)
	assert.Equal(t, "Alice", user["name"])
	assert.Equal(t, "alice@example.com", user["email"], "email must be stored lowercase")
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, "free", user["accountType"])
	assert.Equal(t, true, user["accountStatus"])
	assert.Equal(t, false, user["emailVerified"])
	assert.Equal(t, false, user["profileComplete"])
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, user, "password_hash")
}

func TestRegister_OptionalFields(t *testing.T) {
	f := newFixture(t)

	w, resp := f.do(t, http.MethodPost, "/auth/register", map[string]any{
		"name":            "Bob",
		"email":           "bob@example.com",
		"password":        "p1",
		"accountType":     "premium",
		"accountStatus":   false,
		"emailVerified":   true,
		"profileComplete": true,
	}, "")

	require.Equal(t, http.StatusCreated, w.Code)
	user := resp["user"].(map[string]any)
	assert.Equal(t, "premium", user["accountType"])
	assert.Equal(t, false, user["accountStatus"])
	assert.Equal(t, true, user["emailVerified"])
	assert.Equal(t, true, user["profileComplete"])
}

func TestRegister_UnknownAccountTypeFallsBackToFree(t *testing.T) {
	f := newFixture(t)

	w, resp := f.do(t, http.MethodPost, "/auth/register", map[string]any{
		"name":        "Eve",
		"email":       "eve@example.com",
		"password":    "p1",
		"accountType": "platinum",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "free", resp["user"].(map[string]any)["accountType"])
}

func TestRegister_MissingFields(t *testing.T) {
	f := newFixture(t)

	for _, body := range []map[string]any{
		{},
		{"email": "a@x.com", "password": "p"},
		{"name": "A", "password": "p"},
		{"name": "A", "email": "a@x.com"},
		{"name": "  ", "email": "a@x.com", "password": "p"},
	} {
		w, resp := f.do(t, http.MethodPost, "/auth/register", body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "error", resp["status"])
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a@x.com", "p1")

	// same email, everything else different
	w, resp := f.do(t, http.MethodPost, "/auth/register", map[string]any{
		"name":        "Other Name",
		"email":       "a@x.com",
		"password":    "other-password",
		"accountType": "premium",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already exists.", resp["message"])
}

func TestRegisterAdmin(t *testing.T) {
	f := newFixture(t)

	w, resp := f.do(t, http.MethodPost, "/auth/register-admin", map[string]any{
		"name":         "Root",
		"email":        "root@example.com",
		"password":     "p1",
		"securityCode": testAdminCode,
	}, "")

	require.Equal(t, http.StatusCreated, w.Code)
	user := resp["user"].(map[string]any)
	assert.Equal(t, "admin", user["role"])
	assert.Equal(t, "free", user["accountType"])
	assert.Equal(t, true, user["accountStatus"])
}

func TestRegisterAdmin_BadCode(t *testing.T) {
	f := newFixture(t)

	w, resp := f.do(t, http.MethodPost, "/auth/register-admin", map[string]any{
		"name":         "Root",
		"email":        "root@example.com",
		"password":     "p1",
		"securityCode": "wrong",
	}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid security code.", resp["message"])
}

func TestRegisterAdmin_MissingCode(t *testing.T) {
	f := newFixture(t)

	w, _ := f.do(t, http.MethodPost, "/auth/register-admin", map[string]any{
		"name":     "Root",
		"email":    "root@example.com",
		"password": "p1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_TokenLineage(t *testing.T) {
	f := newFixture(t)

	// register -> token T1 (version 0)
	t1 := f.register(t, "a@x.com", "p1")

	w, _ := f.do(t, http.MethodGet, "/auth/me", nil, t1)
	require.Equal(t, http.StatusOK, w.Code)

	// login -> token T2 (version 1)
	w, resp := f.do(t, http.MethodPost, "/auth/login", map[string]any{
		"email":    "a@x.com",
		"password": "p1",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	t2 := resp["token"].(string)

	// T1 is now stale, T2 is live
	w, _ = f.do(t, http.MethodGet, "/auth/me", nil, t1)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = f.do(t, http.MethodGet, "/auth/me", nil, t2)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_GenericFailureMessage(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a@x.com", "p1")

	wWrongPassword, respWrongPassword := f.do(t, http.MethodPost, "/auth/login", map[string]any{
		"email":    "a@x.com",
		"password": "wrong",
	}, "")
	wUnknownEmail, respUnknownEmail := f.do(t, http.MethodPost, "/auth/login", map[string]any{
		"email":    "nobody@x.com",
		"password": "p1",
	}, "")

	// both failure causes are indistinguishable to the caller
	assert.Equal(t, http.StatusUnauthorized, wWrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, wUnknownEmail.Code)
	assert.Equal(t, respWrongPassword["message"], respUnknownEmail["message"])
}

func TestLogin_MissingFields(t *testing.T) {
	f := newFixture(t)

	w, _ := f.do(t, http.MethodPost, "/auth/login", map[string]any{"email": "a@x.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = f.do(t, http.MethodPost, "/auth/login", map[string]any{"password": "p1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe_RequiresToken(t *testing.T) {
	f := newFixture(t)
	w, _ := f.do(t, http.MethodGet, "/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func tokenVersionOf(t *testing.T, tokenString string) int {
	t.Helper()
	claims := &services.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	return claims.TokenVersion
}

func TestConcurrentLogins_NoLostVersion(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a@x.com", "p1")

	const logins = 4
	tokens := make([]string, logins)
	var wg sync.WaitGroup
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, resp := f.do(t, http.MethodPost, "/auth/login", map[string]any{
				"email":    "a@x.com",
				"password": "p1",
			}, "")
			if w.Code == http.StatusOK {
				tokens[i] = resp["token"].(string)
			}
		}(i)
	}
	wg.Wait()

	// every login got its own version; no increment was lost
	seen := map[int]bool{}
	for i, tok := range tokens {
		require.NotEmpty(t, tok, fmt.Sprintf("login %d failed", i))
		v := tokenVersionOf(t, tok)
		assert.False(t, seen[v], "duplicate token version %d", v)
		seen[v] = true
	}
	for v := 1; v <= logins; v++ {
		assert.True(t, seen[v], "missing token version %d", v)
	}
}
