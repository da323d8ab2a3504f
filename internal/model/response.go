package model

// Error kinds returned in the error envelope. Each kind maps to exactly one
// HTTP status; clients branch on the kind, not the message.
const (
	KindValidationError    = "ValidationError"          // 400
	KindUnauthorized       = "Unauthorized"             // 401
	KindAccountDisabled    = "AccountDisabled"          // 403
	KindNotFound           = "NotFound"                 // 404
	KindDuplicateEmail     = "DuplicateEmail"           // 409
	KindTooManyRequests    = "TooManyRequests"          // 429
	KindServerConfigError  = "ServerConfigurationError" // 500, deployment fault
	KindInternalError      = "InternalError"            // 500
	KindServiceUnavailable = "ServiceUnavailable"       // 503
)

// ErrorResponse is the standard error envelope: {"error": kind, "message": text}.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Pagination is included in list responses only when the client supplied a
// limit. Total is the full filtered count, not the page size.
type Pagination struct {
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
}
