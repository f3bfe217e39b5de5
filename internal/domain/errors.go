package domain

import "errors"

// Error codes the client assigns itself when the server did not provide one.
const (
	CodeNetworkError = "NETWORK_ERROR"
	CodeServerError  = "SERVER_ERROR"
	CodeUnknownError = "UNKNOWN_ERROR"
)

// APIError is the error payload carried in the remote API response envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

const genericErrorMessage = "An unexpected error occurred"

// friendlyMessages maps server error codes onto display text.
var friendlyMessages = map[string]string{
	"AUTH_INVALID_CREDENTIALS": "Invalid email or password",
	"AUTH_USER_EXISTS":         "An account with this email already exists",
	"AUTH_TOKEN_EXPIRED":       "Your session has expired. Please log in again",
	CodeNetworkError:           "Unable to connect. Please check your internet connection",
	"VALIDATION_ERROR":         "Please check your input and try again",
	"NOT_FOUND":                "The requested resource was not found",
	CodeServerError:            "Something went wrong on our end. Please try again later",
}

// UserFriendlyMessage maps an error onto text suitable for the UI layer.
// Known codes get fixed copy; unknown codes fall back to the raw server
// message, then to a generic string.
func UserFriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg, ok := friendlyMessages[apiErr.Code]; ok {
			return msg
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return genericErrorMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return genericErrorMessage
}
