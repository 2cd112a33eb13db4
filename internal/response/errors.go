package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrMajorNotFound ErrCode = "MAJOR_NOT_FOUND"

	// ─── Upstream ──────────────────────────────────────────────────────
	ErrCatalogUnavailable ErrCode = "CATALOG_UNAVAILABLE"
	ErrViewSuperseded     ErrCode = "VIEW_SUPERSEDED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrNotFound:
		return "Resource not found."
	case ErrMajorNotFound:
		return "Major not found"
	case ErrCatalogUnavailable:
		return "Major information is temporarily unavailable."
	case ErrViewSuperseded:
		return "This viewer has since opened another major."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
