package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/studai/studai-backend/internal/quiz"
	"github.com/studai/studai-backend/internal/repository"
	"github.com/studai/studai-backend/internal/response"
	"github.com/studai/studai-backend/internal/service"
)

// serviceErrors maps sentinel errors to a status and error code.
var serviceErrors = []struct {
	err    error
	status int
	code   response.ErrCode
}{
	{service.ErrQuizNotFound, http.StatusNotFound, response.ErrQuizNotFound},
	{service.ErrNotQuizOwner, http.StatusForbidden, response.ErrNotQuizOwner},
	{service.ErrNoQuestions, http.StatusUnprocessableEntity, response.ErrNoQuestions},
	{service.ErrTooManyQuestions, http.StatusBadRequest, response.ErrTooManyQuestions},
	{service.ErrDailyQuizLimit, http.StatusTooManyRequests, response.ErrDailyQuizLimit},
	{service.ErrQuizCooldown, http.StatusTooManyRequests, response.ErrQuizCooldown},
	{service.ErrBattleNotFound, http.StatusNotFound, response.ErrBattleNotFound},
	{service.ErrBattleFull, http.StatusConflict, response.ErrBattleFull},
	{service.ErrBattleStarted, http.StatusConflict, response.ErrBattleStarted},
	{service.ErrBattleNotActive, http.StatusConflict, response.ErrBattleNotActive},
	{service.ErrNotBattleHost, http.StatusForbidden, response.ErrNotBattleHost},
	{service.ErrNotBattlePlayer, http.StatusForbidden, response.ErrForbidden},
	{service.ErrAlreadySubmitted, http.StatusConflict, response.ErrAlreadyAnswered},
	{repository.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
	{repository.ErrDuplicateUsername, http.StatusConflict, response.ErrUsernameTaken},
	{repository.ErrDuplicateEmail, http.StatusConflict, response.ErrEmailTaken},
}

// classify returns the status and code for a service error. Unknown errors
// are internal.
func classify(err error) (int, response.ErrCode) {
	if errors.Is(err, quiz.ErrInvalidSubmission) {
		return http.StatusBadRequest, response.ErrInvalidSubmission
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, response.ErrInternal
}

// failService writes the error response for err. Internal errors are logged.
func failService(c *gin.Context, log zerolog.Logger, err error) {
	var qe *service.QuestionError
	if errors.As(err, &qe) {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuestion, qe.Fields())
		return
	}

	var ce *service.CooldownError
	if errors.As(err, &ce) {
		c.Header("Retry-After", strconv.Itoa(int(ce.RetryAfter.Seconds())+1))
	}

	status, code := classify(err)
	switch {
	case status == http.StatusInternalServerError:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		response.Fail(c, status, code)
	case code == response.ErrInvalidSubmission:
		response.FailWithMessage(c, status, code, err.Error())
	default:
		response.Fail(c, status, code)
	}
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	return page, perPage
}
