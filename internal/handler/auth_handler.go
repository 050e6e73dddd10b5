package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/studai/studai-backend/internal/middleware"
	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/response"
	"github.com/studai/studai-backend/internal/service"
	"github.com/studai/studai-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService  *service.AuthService
	userService  *service.UserService
	quotaService *service.QuotaService
	log          zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	userService *service.UserService,
	quotaService *service.QuotaService,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		userService:  userService,
		quotaService: quotaService,
		log:          log.With().Str("component", "auth_handler").Logger(),
	}
}

// Register godoc
// POST /api/v1/auth/register
// Creates a student account and logs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	token, err := h.authService.GenerateUserToken(c.Request.Context(), user)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, model.LoginResponse{Token: token, User: *user})
}

// Login godoc
// POST /api/v1/auth/login
// Validates username/email + password and returns a JWT. A new login
// invalidates the previous session of the account.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, ok := h.authenticate(c, req)
	if !ok {
		return
	}

	token, err := h.authService.GenerateUserToken(c.Request.Context(), user)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, model.LoginResponse{Token: token, User: *user})
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Validates credentials of an admin account, returns JWT with permissions.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, ok := h.authenticate(c, req)
	if !ok {
		return
	}
	if user.Role != model.RoleAdmin {
		response.Fail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
		return
	}

	permissions := model.PermissionsFor(user.Role)
	token, err := h.authService.GenerateAdminToken(c.Request.Context(), user, permissions)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, model.LoginResponse{Token: token, User: *user, Permissions: permissions})
}

// authenticate looks up the account and checks the password. Unknown
// accounts and wrong passwords get the same response.
func (h *AuthHandler) authenticate(c *gin.Context, req model.LoginRequest) (*model.User, bool) {
	user, err := h.userService.GetByIdentifier(c.Request.Context(), req.Identifier)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return nil, false
	}
	if err := h.authService.CheckPassword(user.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return nil, false
	}
	return user, true
}

// Logout godoc
// POST /api/v1/auth/logout
// Ends the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.ResetSession(c.Request.Context(), claims.UserID); err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the current user and today's remaining quiz quota.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	remaining, err := h.quotaService.RemainingDailyQuizzes(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Warn().Err(err).Int("user_id", user.ID).Msg("Quota read failed")
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":                    user,
		"daily_quizzes_remaining": remaining,
	})
}

// AdminMe godoc
// GET /api/v1/auth/admin/me
// Returns the profile of the current admin and the permissions in the token.
func (h *AuthHandler) AdminMe(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":        user,
		"permissions": claims.Permissions,
	})
}
