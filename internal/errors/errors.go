// Package errors provides the error taxonomy used across foldchat.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common cases
var (
	ErrValidation      = errors.New("validation failed")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrUnknownModel    = errors.New("unknown model")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrProviderHTTP    = errors.New("provider request failed")
	ErrNetwork         = errors.New("network error")
	ErrUpload          = errors.New("upload failed")
)

// ValidationError represents a form field that failed local validation.
// Field names the offending input ("email", "password", "folder", ...).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is allows comparison with sentinel errors
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AuthError represents a failure reported by the identity provider
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *AuthError) Is(target error) bool {
	if target == ErrAuthFailed {
		return true
	}
	_, ok := target.(*AuthError)
	return ok
}

// NewAuthError creates a new AuthError
func NewAuthError(message string, err error) *AuthError {
	return &AuthError{Message: message, Err: err}
}

// UnknownModelError is returned when a model id is not in the catalog
// or its provider has no registered sender.
type UnknownModelError struct {
	ModelID string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("invalid model selected: %s", e.ModelID)
}

// Is allows comparison with sentinel errors
func (e *UnknownModelError) Is(target error) bool {
	if target == ErrUnknownModel {
		return true
	}
	_, ok := target.(*UnknownModelError)
	return ok
}

// NewUnknownModelError creates a new UnknownModelError
func NewUnknownModelError(modelID string) *UnknownModelError {
	return &UnknownModelError{ModelID: modelID}
}

// InvalidResponseError represents a 2xx response missing the expected fields
type InvalidResponseError struct {
	Provider string
	Path     string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response from %s API: missing %s", e.Provider, e.Path)
}

// Is allows comparison with sentinel errors
func (e *InvalidResponseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*InvalidResponseError)
	return ok
}

// NewInvalidResponseError creates a new InvalidResponseError
func NewInvalidResponseError(provider, path string) *InvalidResponseError {
	return &InvalidResponseError{Provider: provider, Path: path}
}

// ProviderHTTPError represents a completion API request that returned an error
type ProviderHTTPError struct {
	Provider   string
	StatusCode int
	Message    string
	Guidance   string
}

func (e *ProviderHTTPError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Guidance)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// Is allows comparison with sentinel errors
func (e *ProviderHTTPError) Is(target error) bool {
	if target == ErrProviderHTTP {
		return true
	}
	_, ok := target.(*ProviderHTTPError)
	return ok
}

// NewProviderHTTPError creates a ProviderHTTPError and attaches the guidance
// string for well-known status codes.
func NewProviderHTTPError(provider string, statusCode int, message string) *ProviderHTTPError {
	return &ProviderHTTPError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Guidance:   GuidanceForStatus(provider, statusCode),
	}
}

// GuidanceForStatus returns the user-facing hint for a provider status code.
func GuidanceForStatus(provider string, statusCode int) string {
	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Sprintf("Authentication failed: Please check your %s API key", provider)
	case http.StatusForbidden:
		return "Access forbidden: Your API key may not have the required permissions"
	case http.StatusTooManyRequests:
		return "Rate limit exceeded: Please try again later"
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return fmt.Sprintf("%s API server error: Please try again later", provider)
	case http.StatusServiceUnavailable:
		return fmt.Sprintf("%s API service unavailable: Please try again later", provider)
	default:
		return ""
	}
}

// NetworkError represents a request that never produced a response
type NetworkError struct {
	Provider string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network error: could not connect to %s API: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("network error: could not connect to %s API", e.Provider)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *NetworkError) Is(target error) bool {
	if target == ErrNetwork {
		return true
	}
	_, ok := target.(*NetworkError)
	return ok
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(provider, endpoint string, err error) *NetworkError {
	return &NetworkError{Provider: provider, Endpoint: endpoint, Err: err}
}

// UploadError represents a blob storage failure
type UploadError struct {
	FileName string
	Err      error
}

func (e *UploadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("upload of %s failed", e.FileName)
	}
	return fmt.Sprintf("upload of %s failed: %v", e.FileName, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *UploadError) Is(target error) bool {
	if target == ErrUpload {
		return true
	}
	_, ok := target.(*UploadError)
	return ok
}

// NewUploadError creates a new UploadError
func NewUploadError(fileName string, err error) *UploadError {
	return &UploadError{FileName: fileName, Err: err}
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsAuthError reports whether err is an authentication failure
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthFailed) {
		return true
	}
	status := GetHTTPStatus(err)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// IsUnknownModelError reports whether err names a model missing from the catalog
func IsUnknownModelError(err error) bool {
	return errors.Is(err, ErrUnknownModel)
}

// IsInvalidResponseError reports whether a provider answered with an unexpected shape
func IsInvalidResponseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// IsNetworkError reports whether err means no response was received
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsRateLimitError reports whether the provider rejected the call for rate limiting
func IsRateLimitError(err error) bool {
	return GetHTTPStatus(err) == http.StatusTooManyRequests
}

// IsUploadError reports whether err is an UploadError
func IsUploadError(err error) bool {
	return errors.Is(err, ErrUpload)
}

// GetHTTPStatus returns the upstream status code carried by err, or 0.
func GetHTTPStatus(err error) int {
	var httpErr *ProviderHTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *ProviderHTTPError
	if errors.As(err, &httpErr) && httpErr.Guidance != "" {
		return httpErr.Guidance
	}
	return err.Error()
}
