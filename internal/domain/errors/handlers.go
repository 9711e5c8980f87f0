package errors

import (
	"github.com/pkg/errors"
)

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`              // Business error code, e.g., "MALFORMED_CREDENTIAL"
	Message string `json:"message"`           // Operator-facing error message
	Details any    `json:"details,omitempty"` // Detailed error information (optional)
}

// MetaInfo represents report metadata
type MetaInfo struct {
	RunID string `json:"run_id"` // Command run tracking ID
}

// SuccessReport defines the structure for successful command output
type SuccessReport struct {
	Data any       `json:"data"`
	Meta *MetaInfo `json:"meta"`
}

// ErrorReport defines the structure for failed command output
type ErrorReport struct {
	Error *ErrorInfo `json:"error"`
	Meta  *MetaInfo  `json:"meta"`
}

// ToErrorInfo converts any error into an ErrorInfo, preferring AppError fields.
func ToErrorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}

	var appErr AppError
	if errors.As(err, &appErr) {
		info := &ErrorInfo{Code: appErr.ErrorCode(), Message: appErr.Message()}
		if d := appErr.Details(); d != "" {
			info.Details = d
		}

		return info
	}

	return &ErrorInfo{
		Code:    ErrInternalError.ErrorCode(),
		Message: ErrInternalError.Message(),
		Details: err.Error(),
	}
}
