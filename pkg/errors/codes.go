package errors

import "net/http"

// ErrorCode is a string identifier for a specific failure category.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeValidation         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeTimeout            ErrorCode = "COMMON_004"
	ErrCodeSerialization      ErrorCode = "COMMON_005"
	ErrCodeCacheError         ErrorCode = "COMMON_006"
	ErrCodeDatabaseError      ErrorCode = "COMMON_007"
	ErrCodeNotImplemented     ErrorCode = "COMMON_008"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_009"
)

// Risk-platform error codes.  These map one-to-one onto the failure taxonomy
// every layer of the service observes:
//
//	ErrCodeNotReady                — no snapshot has been published yet; the
//	                                 caller should retry after a short backoff.
//	ErrCodeCollaboratorUnavailable — an ML model artifact or the narrative
//	                                 generator is missing or erroring; callers
//	                                 degrade to defaults, never fail a cycle.
//	ErrCodeUpstreamIO              — a best-effort network or filesystem fetch
//	                                 failed; callers degrade to empty results.
const (
	ErrCodeNotReady                ErrorCode = "RISK_001"
	ErrCodeCollaboratorUnavailable ErrorCode = "RISK_002"
	ErrCodeUpstreamIO              ErrorCode = "RISK_003"
	ErrCodeMalformedSequence       ErrorCode = "RISK_004"
)

// Sentinel codes used only as return values of GetCode.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// HTTPStatus maps an ErrorCode to the HTTP status the interface layer should
// respond with.  Unknown codes map to 500 so that nothing accidentally leaks
// as a success.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeOK:
		return http.StatusOK
	case ErrCodeValidation, ErrCodeMalformedSequence:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeNotReady, ErrCodeServiceUnavailable, ErrCodeCollaboratorUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
