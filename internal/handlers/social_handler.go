package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"authgate/internal/models"
	"authgate/internal/repositories"
	"authgate/internal/services"
)

type SocialHandler struct {
	users    repositories.UserRepository
	auth     services.AuthService
	tokens   services.TokenService
	verifier services.IdentityVerifier
	logger   zerolog.Logger
}

func NewSocialHandler(
	users repositories.UserRepository,
	auth services.AuthService,
	tokens services.TokenService,
	verifier services.IdentityVerifier,
	logger zerolog.Logger,
) *SocialHandler {
	return &SocialHandler{
		users:    users,
		auth:     auth,
		tokens:   tokens,
		verifier: verifier,
		logger:   logger,
	}
}

// @Summary      Log in with a federated identity provider
// @Description  Verifies a Google or Apple id token and signs the caller in,
// @Description  creating an account with a pre-verified email if none exists.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.SocialLoginRequest  true  "Provider and id token"
// @Success      200   {object}  map[string]interface{}
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/social [post]
func (h *SocialHandler) SocialLogin(c *gin.Context) {
	var req models.SocialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "provider and idToken are required.")
		return
	}
	if req.Provider == "" || req.IDToken == "" {
		respondError(c, http.StatusBadRequest, "provider and idToken are required.")
		return
	}
	provider := services.NormalizeProvider(req.Provider)
	if provider == "" {
		respondError(c, http.StatusBadRequest, "Invalid provider.")
		return
	}

	identity, err := h.verifier.Verify(provider, req.IDToken)
	if err != nil {
		if errors.Is(err, services.ErrEmailUnavailable) {
			respondError(c, http.StatusBadRequest, "Email not available in token.")
			return
		}
		// generic signal for every verification failure mode
		respondError(c, http.StatusUnauthorized, "Social login failed.")
		return
	}

	existing, err := h.users.GetByEmail(identity.Email)
	if err != nil {
		h.logger.Error().Err(err).Msg("social login lookup failed")
		respondError(c, http.StatusInternalServerError, "Social login failed.")
		return
	}

	if existing != nil {
		// a social login revokes prior sessions the same way a fresh
		// password login does
		updated, err := h.users.BumpForSocialLogin(identity.Email)
		if err != nil || updated == nil {
			h.logger.Error().Err(err).Str("user_id", existing.ID).Msg("social login bump failed")
			respondError(c, http.StatusInternalServerError, "Social login failed.")
			return
		}
		h.issue(c, updated, http.StatusOK, provider)
		return
	}

	// brand-new account: random placeholder password, no independent
	// password login path until a reset flow sets one
	placeholder, err := randomPlaceholderPassword(h.auth)
	if err != nil {
		h.logger.Error().Err(err).Msg("social login placeholder password failed")
		respondError(c, http.StatusInternalServerError, "Social login failed.")
		return
	}

	user := &models.User{
		Name:            identity.Name,
		Email:           identity.Email,
		PasswordHash:    placeholder,
		Role:            models.RoleUser,
		AccountType:     models.AccountTypeFree,
		AccountStatus:   true,
		EmailVerified:   true,
		ProfileComplete: false,
	}
	if err := h.users.Create(user); err != nil {
		h.logger.Error().Err(err).Str("email", identity.Email).Msg("social login create failed")
		respondError(c, http.StatusInternalServerError, "Social login failed.")
		return
	}
	h.issue(c, user, http.StatusCreated, provider)
}

func (h *SocialHandler) issue(c *gin.Context, user *models.User, status int, provider string) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", user.ID).Msg("social login token issue failed")
		respondError(c, http.StatusInternalServerError, "Social login failed.")
		return
	}
	h.logger.Info().Str("user_id", user.ID).Str("provider", provider).Msg("social login")
	c.JSON(status, gin.H{
		"status": "success",
		"token":  token,
		"user":   user.Public(),
	})
}
