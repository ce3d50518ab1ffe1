package models

import "fmt"

// ValidationError reports bad caller input. It is returned before any
// backend write is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return e.Message
}

// AuthError reports a credential or account problem. Message is the
// fixed user-facing string mapped from the provider's error code.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// BackendError wraps a failed read or write against the document
// store.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ConfigurationError means the vendor backend cannot be reached
// because required settings are missing or invalid.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// authMessages maps provider error codes to fixed user-facing
// strings. Both the Identity Toolkit REST codes and the legacy
// auth/* codes are covered since tokens from either surface end up
// here.
var authMessages = map[string]string{
	"EMAIL_NOT_FOUND":             "No account found with this email address.",
	"auth/user-not-found":         "No account found with this email address.",
	"INVALID_PASSWORD":            "Incorrect password. Please try again.",
	"auth/wrong-password":         "Incorrect password. Please try again.",
	"INVALID_LOGIN_CREDENTIALS":   "Incorrect password. Please try again.",
	"EMAIL_EXISTS":                "An account with this email already exists.",
	"auth/email-already-in-use":   "An account with this email already exists.",
	"WEAK_PASSWORD":               "Password should be at least 6 characters.",
	"auth/weak-password":          "Password should be at least 6 characters.",
	"INVALID_EMAIL":               "Please enter a valid email address.",
	"auth/invalid-email":          "Please enter a valid email address.",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "Too many failed attempts. Please try again later.",
	"auth/too-many-requests":      "Too many failed attempts. Please try again later.",
	"permission-denied":           "You do not have permission to perform this action.",
	"unavailable":                 "Service is temporarily unavailable. Please try again.",
}

const unknownAuthMessage = "An unexpected error occurred."

// NewAuthError builds an AuthError for the given provider code,
// falling back to a generic message for unmapped codes.
func NewAuthError(code string) *AuthError {
	msg, ok := authMessages[code]
	if !ok {
		msg = unknownAuthMessage
	}
	return &AuthError{Code: code, Message: msg}
}
