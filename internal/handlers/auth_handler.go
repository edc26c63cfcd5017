package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"authgate/internal/middleware"
	"authgate/internal/models"
	"authgate/internal/repositories"
	"authgate/internal/services"
)

type AuthHandler struct {
	users     repositories.UserRepository
	auth      services.AuthService
	tokens    services.TokenService
	adminCode string
	logger    zerolog.Logger
}

func NewAuthHandler(
	users repositories.UserRepository,
	auth services.AuthService,
	tokens services.TokenService,
	adminCode string,
	logger zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:     users,
		auth:      auth,
		tokens:    tokens,
		adminCode: adminCode,
		logger:    logger,
	}
}

// @Summary      Register a new user
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterRequest  true  "Registration data"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Name, email, and password are required.")
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "Name, email, and password are required.")
		return
	}

	user := &models.User{
		Name:            name,
		Email:           email,
		Role:            models.RoleUser,
		AccountType:     models.AccountTypeFree,
		AccountStatus:   true,
		EmailVerified:   false,
		ProfileComplete: false,
	}
	if req.AccountType == models.AccountTypePremium {
		user.AccountType = models.AccountTypePremium
	}
	if req.AccountStatus != nil {
		user.AccountStatus = *req.AccountStatus
	}
	if req.EmailVerified != nil {
		user.EmailVerified = *req.EmailVerified
	}
	if req.ProfileComplete != nil {
		user.ProfileComplete = *req.ProfileComplete
	}

	h.createAndIssue(c, user, req.Password, "Failed to register user.")
}

// @Summary      Register an admin account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterAdminRequest  true  "Admin registration data"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register-admin [post]
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req models.RegisterAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Name, email, password, and security code are required.")
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	securityCode := strings.TrimSpace(req.SecurityCode)
	if name == "" || email == "" || req.Password == "" || securityCode == "" {
		respondError(c, http.StatusBadRequest, "Name, email, password, and security code are required.")
		return
	}

	if h.adminCode == "" || !services.SecureEquals(securityCode, h.adminCode) {
		respondError(c, http.StatusForbidden, "Invalid security code.")
		return
	}

	user := &models.User{
		Name:            name,
		Email:           email,
		Role:            models.RoleAdmin,
		AccountType:     models.AccountTypeFree,
		AccountStatus:   true,
		EmailVerified:   false,
		ProfileComplete: false,
	}
	h.createAndIssue(c, user, req.Password, "Failed to register admin.")
}

func (h *AuthHandler) createAndIssue(c *gin.Context, user *models.User, password, failureMessage string) {
	hash, err := h.auth.HashPassword(password)
	if err != nil {
		respondError(c, http.StatusInternalServerError, failureMessage)
		return
	}
	user.PasswordHash = hash

	if err := h.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			respondError(c, http.StatusConflict, "Email already exists.")
			return
		}
		h.logger.Error().Err(err).Str("email", user.Email).Msg("user create failed")
		respondError(c, http.StatusInternalServerError, failureMessage)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", user.ID).Msg("token issue failed")
		respondError(c, http.StatusInternalServerError, failureMessage)
		return
	}

	h.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"token":  token,
		"user":   user.Public(),
	})
}

// @Summary      Log in with email and password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email and password are required.")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "Email and password are required.")
		return
	}

	user, err := h.users.GetByEmail(email)
	if err != nil {
		h.logger.Error().Err(err).Msg("login lookup failed")
		respondError(c, http.StatusInternalServerError, "Login failed.")
		return
	}
	// unknown email and wrong password produce the same response
	if user == nil || !h.auth.ComparePassword(req.Password, user.PasswordHash) {
		respondError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	// bump first, then sign against the returned row: every token from an
	// earlier login is now stale
	updated, err := h.users.BumpTokenVersion(user.ID)
	if err != nil || updated == nil {
		h.logger.Error().Err(err).Str("user_id", user.ID).Msg("token version bump failed")
		respondError(c, http.StatusInternalServerError, "Login failed.")
		return
	}

	token, err := h.tokens.Issue(updated)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", user.ID).Msg("token issue failed")
		respondError(c, http.StatusInternalServerError, "Login failed.")
		return
	}

	h.logger.Info().Str("user_id", updated.ID).Int("token_version", updated.TokenVersion).Msg("login")
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
		"user":   updated.Public(),
	})
}

// @Summary      Current authenticated user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Invalid or expired token.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"user":   user.Public(),
	})
}
