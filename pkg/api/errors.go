package api

// Стабильные коды ошибок API
const (
	CodeInvalidBody        = "INVALID_BODY"
	CodeMissingFields      = "MISSING_FIELDS"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeBadToken           = "BAD_TOKEN"
	CodeTokenUsed          = "TOKEN_USED"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeInternalError      = "INTERNAL_ERROR"
)

// HealthResponse ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
