package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"authgate/internal/handlers"
	"authgate/internal/routes"
	"authgate/internal/services"
	"authgate/internal/testutil"
)

const testJWTSecret = "test-secret"
const testAdminCode = "super-secret-admin-code"

type stubVerifier struct {
	identity *services.Identity
	err      error
}

func (v *stubVerifier) Verify(provider, idToken string) (*services.Identity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

type fixture struct {
	users    *testutil.FakeUserRepository
	otps     *testutil.FakeOtpRepository
	emails   *testutil.RecordingEmailService
	verifier *stubVerifier
	tokens   services.TokenService
	router   *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		users:    testutil.NewFakeUserRepository(),
		otps:     testutil.NewFakeOtpRepository(),
		emails:   &testutil.RecordingEmailService{},
		verifier: &stubVerifier{},
	}

	logger := zerolog.Nop()
	auth := services.NewAuthService()
	f.tokens = services.NewTokenService(testJWTSecret, f.users)
	otpSvc := services.NewOtpService(f.otps, f.users, auth, f.emails, 2, logger)

	authHandler := handlers.NewAuthHandler(f.users, auth, f.tokens, testAdminCode, logger)
	otpHandler := handlers.NewOtpHandler(otpSvc, logger)
	socialHandler := handlers.NewSocialHandler(f.users, auth, f.tokens, f.verifier, logger)

	f.router = routes.SetupRoutes(gin.New(), f.tokens, authHandler, otpHandler, socialHandler, nil)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any, bearer string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	resp := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (f *fixture) register(t *testing.T, email, password string) string {
	t.Helper()
	w, resp := f.do(t, http.MethodPost, "/auth/register", map[string]any{
		"name":     "Test User",
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return token
}
