package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrUsernameTaken      ErrCode = "USERNAME_TAKEN"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrAdminAccessOnly  ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation        ErrCode = "VALIDATION_ERROR"
	ErrInvalidID         ErrCode = "INVALID_ID"
	ErrInvalidPayload    ErrCode = "INVALID_PAYLOAD"
	ErrInvalidSubmission ErrCode = "INVALID_SUBMISSION"
	ErrInvalidQuestion   ErrCode = "INVALID_QUESTION"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Quiz-specific ─────────────────────────────────────────────────
	ErrQuizNotFound     ErrCode = "QUIZ_NOT_FOUND"
	ErrNotQuizOwner     ErrCode = "NOT_QUIZ_OWNER"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrTooManyQuestions ErrCode = "TOO_MANY_QUESTIONS"
	ErrDailyQuizLimit   ErrCode = "DAILY_QUIZ_LIMIT"
	ErrQuizCooldown     ErrCode = "QUIZ_COOLDOWN"

	// ─── Battle-specific ───────────────────────────────────────────────
	ErrBattleNotFound  ErrCode = "BATTLE_NOT_FOUND"
	ErrBattleFull      ErrCode = "BATTLE_FULL"
	ErrBattleNotActive ErrCode = "BATTLE_NOT_ACTIVE"
	ErrBattleStarted   ErrCode = "BATTLE_ALREADY_STARTED"
	ErrNotBattleHost   ErrCode = "NOT_BATTLE_HOST"
	ErrAlreadyAnswered ErrCode = "ALREADY_SUBMITTED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid username/email or password."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."
	case ErrUsernameTaken:
		return "This username is already taken."
	case ErrEmailTaken:
		return "This email is already registered."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have access to this resource."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidSubmission:
		return "Answers must be a list of {questionId, answer} entries."
	case ErrInvalidQuestion:
		return "One or more questions are invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Quiz-specific ─────────────────────────────────────────────────
	case ErrQuizNotFound:
		return "Quiz not found."
	case ErrNotQuizOwner:
		return "You are not the owner of this quiz."
	case ErrNoQuestions:
		return "This quiz has no questions."
	case ErrTooManyQuestions:
		return "This quiz has too many questions."
	case ErrDailyQuizLimit:
		return "You have reached today's quiz creation limit."
	case ErrQuizCooldown:
		return "You submitted this quiz recently. Please wait before trying again."

	// ─── Battle-specific ───────────────────────────────────────────────
	case ErrBattleNotFound:
		return "Battle not found or expired."
	case ErrBattleFull:
		return "This battle is full."
	case ErrBattleNotActive:
		return "This battle has not started yet."
	case ErrBattleStarted:
		return "This battle has already started."
	case ErrNotBattleHost:
		return "Only the host can start the battle."
	case ErrAlreadyAnswered:
		return "You have already submitted answers for this battle."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
