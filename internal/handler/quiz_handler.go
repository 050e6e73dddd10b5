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

// QuizHandler handles quiz authoring and play endpoints.
type QuizHandler struct {
	quizService    *service.QuizService
	attemptService *service.AttemptService
	log            zerolog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService, attemptService *service.AttemptService, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizService:    quizService,
		attemptService: attemptService,
		log:            log.With().Str("component", "quiz_handler").Logger(),
	}
}

// CreateQuiz godoc
// POST /api/v1/quizzes
// Creates a quiz with its questions. Counts against the daily quota.
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.quizService.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, q)
}

// ListQuizzes godoc
// GET /api/v1/quizzes?mine=true&search=&page=&per_page=
// Lists the caller's quizzes plus public ones.
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	claims := middleware.GetClaims(c)
	page, perPage := pageQuery(c)

	quizzes, pagination, err := h.quizService.ListVisible(
		c.Request.Context(), claims.UserID, c.Query("mine") == "true", c.Query("search"), page, perPage,
	)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, quizzes, pagination)
}

// GetQuiz godoc
// GET /api/v1/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	q, err := h.quizService.GetVisible(c.Request.Context(), id, claims.UserID)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, q)
}

// GetQuestions godoc
// GET /api/v1/quizzes/:id/questions
// Returns the questions without answer keys. Matching items come back in a
// new order on every call.
func (h *QuizHandler) GetQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	q, err := h.quizService.GetVisible(c.Request.Context(), id, claims.UserID)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	payload, err := h.quizService.Payload(c.Request.Context(), q)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, payload)
}

// ReplaceQuestions godoc
// PUT /api/v1/quizzes/:id/questions
// Owner only. Replaces the whole question set and drops cached payloads.
func (h *QuizHandler) ReplaceQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	var req model.ReplaceQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.quizService.ReplaceQuestions(c.Request.Context(), id, claims.UserID, req); err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz_id": id, "question_count": len(req.Questions)})
}

// DeleteQuiz godoc
// DELETE /api/v1/quizzes/:id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), id, claims.UserID, false); err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// SubmitQuiz godoc
// POST /api/v1/quizzes/:id/submit
// Scores {"answers": [{questionId, answer}, ...]} against the stored keys.
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	var req model.SubmitQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.attemptService.Submit(c.Request.Context(), claims.UserID, id, req.Answers)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// ListAttempts godoc
// GET /api/v1/attempts
// Returns the caller's attempt history, newest first.
func (h *QuizHandler) ListAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	page, perPage := pageQuery(c)

	attempts, pagination, err := h.attemptService.History(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, attempts, pagination)
}
