package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/studai/studai-backend/internal/middleware"
	"github.com/studai/studai-backend/internal/response"
	"github.com/studai/studai-backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler handles the admin panel endpoints.
type AdminHandler struct {
	authService   *service.AuthService
	userService   *service.UserService
	quizService   *service.QuizService
	exportService *service.ExportService
	adminService  *service.AdminService
	log           zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	authService *service.AuthService,
	userService *service.UserService,
	quizService *service.QuizService,
	exportService *service.ExportService,
	adminService *service.AdminService,
	log zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		authService:   authService,
		userService:   userService,
		quizService:   quizService,
		exportService: exportService,
		adminService:  adminService,
		log:           log.With().Str("component", "admin_handler").Logger(),
	}
}

// ListUsers godoc
// GET /api/v1/admin/users?search=&page=&per_page=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, perPage := pageQuery(c)

	users, pagination, err := h.userService.ListUsers(c.Request.Context(), c.Query("search"), page, perPage)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, users, pagination)
}

// DeleteUser godoc
// DELETE /api/v1/admin/users/:id
// Deletes an account with its quizzes and attempts. Admins cannot delete themselves.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	if id == claims.UserID {
		response.Fail(c, http.StatusBadRequest, response.ErrForbidden)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		failService(c, h.log, err)
		return
	}

	h.log.Info().Int("user_id", id).Int("by_admin", claims.UserID).Msg("User deleted")
	response.Success(c, http.StatusOK, gin.H{})
}

// ResetUserSession godoc
// POST /api/v1/admin/users/:id/reset-session
// Forces the user to log in again.
func (h *AdminHandler) ResetUserSession(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetSession(c.Request.Context(), id); err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Session reset"})
}

// ListQuizzes godoc
// GET /api/v1/admin/quizzes?search=&page=&per_page=
// Lists every quiz, private ones included.
func (h *AdminHandler) ListQuizzes(c *gin.Context) {
	page, perPage := pageQuery(c)

	quizzes, pagination, err := h.quizService.ListAll(c.Request.Context(), c.Query("search"), page, perPage)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, quizzes, pagination)
}

// DeleteQuiz godoc
// DELETE /api/v1/admin/quizzes/:id
func (h *AdminHandler) DeleteQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), id, claims.UserID, true); err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ExportAttempts godoc
// GET /api/v1/admin/quizzes/:id/attempts/export
// Downloads an XLSX workbook with one row per attempt.
func (h *AdminHandler) ExportAttempts(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	data, filename, err := h.exportService.ExportAttempts(c.Request.Context(), id)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetStats godoc
// GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats(c.Request.Context())
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}
