package theme

import (
	"errors"
	"fmt"
	"strings"
)

// Error code constants for standardized classification across the pipeline.
// The engine adapter maps transport errors to one of these codes.
const (
	ErrCodeAuthentication  = "authentication_error"
	ErrCodeRateLimit       = "rate_limit_exceeded"
	ErrCodeTimeout         = "timeout"
	ErrCodeServerError     = "server_error"
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeInvalidResponse = "invalid_response"
	ErrCodeParse           = "parse_error"
)

// ServiceError represents a typed failure from the external engine.
// Use the IsXxx helpers below to classify without inspecting fields.
type ServiceError struct {
	Code    string // One of the ErrCode* constants.
	Message string // Human-readable description.
	Err     error  // Underlying error (may be nil).
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a typed engine error.
func NewServiceError(code, message string, err error) *ServiceError {
	return &ServiceError{Code: code, Message: message, Err: err}
}

// InvalidPromptError reports a prompt that failed the length or content
// gate. Never retryable.
type InvalidPromptError struct {
	Reasons []string
}

func (e *InvalidPromptError) Error() string {
	return "invalid prompt: " + strings.Join(e.Reasons, "; ")
}

// StructuralError reports a malformed candidate from the engine: a missing
// or syntactically invalid color field, or absent visual elements. Never
// retryable, since the same response would fail again.
type StructuralError struct {
	Field  string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural validation failed: field %q %s", e.Field, e.Reason)
}

// DiversityError reports a candidate too similar to the fallback palette or
// to a previously accepted theme. Retryable with an escalated prompt.
type DiversityError struct {
	FallbackDistance float64
	SimilarityScore  float64
	ConflictingIDs   []string
	Recommendations  []string
}

func (e *DiversityError) Error() string {
	if len(e.ConflictingIDs) > 0 {
		return fmt.Sprintf("theme too similar to session themes %v (similarity %.2f)",
			e.ConflictingIDs, e.SimilarityScore)
	}
	return fmt.Sprintf("theme too similar to fallback theme (distance %.1f)", e.FallbackDistance)
}

// ContextualError reports a candidate whose colors or animations do not
// match the semantic context of the prompt. Retryable.
type ContextualError struct {
	ColorScore      float64
	AnimationScore  float64
	Overall         float64
	Issues          []string
	Recommendations []string
}

func (e *ContextualError) Error() string {
	return fmt.Sprintf("theme does not fit prompt context (color %.2f, animation %.2f, overall %.2f)",
		e.ColorScore, e.AnimationScore, e.Overall)
}

// IsAuthenticationError reports whether err is an authentication failure.
func IsAuthenticationError(err error) bool {
	return hasCode(err, ErrCodeAuthentication)
}

// IsRateLimitError reports whether err is a rate-limit rejection.
func IsRateLimitError(err error) bool {
	return hasCode(err, ErrCodeRateLimit)
}

// IsTimeoutError reports whether err is a timeout or cancellation.
func IsTimeoutError(err error) bool {
	return hasCode(err, ErrCodeTimeout)
}

// IsServerError reports whether err is a service-side failure.
func IsServerError(err error) bool {
	return hasCode(err, ErrCodeServerError)
}

// IsInvalidPromptError reports whether err is a prompt gate failure.
func IsInvalidPromptError(err error) bool {
	var e *InvalidPromptError
	return errors.As(err, &e)
}

// IsStructuralError reports whether err is a malformed-candidate failure.
func IsStructuralError(err error) bool {
	var e *StructuralError
	return errors.As(err, &e)
}

// IsDiversityError reports whether err is a similarity rejection.
func IsDiversityError(err error) bool {
	var e *DiversityError
	return errors.As(err, &e)
}

// IsContextualError reports whether err is a context-fit rejection.
func IsContextualError(err error) bool {
	var e *ContextualError
	return errors.As(err, &e)
}

// nonRetryableFragments classifies errors that arrive as plain strings from
// collaborators outside this module. Typed errors are preferred; this is the
// compatibility path for engine messages.
var nonRetryableFragments = []string{
	"invalid api key",
	"invalid prompt",
	"failed to parse",
	"forbidden",
	"invalid response from ai service",
}

// IsRetryable reports whether the pipeline may succeed if the engine is
// called again. Validation rejections (diversity, contextual) and transient
// service failures are retryable; prompt, structural, auth, and parse
// failures are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case IsInvalidPromptError(err), IsStructuralError(err):
		return false
	case IsDiversityError(err), IsContextualError(err):
		return true
	}

	var se *ServiceError
	if errors.As(err, &se) {
		switch se.Code {
		case ErrCodeAuthentication, ErrCodeInvalidRequest, ErrCodeInvalidResponse, ErrCodeParse:
			return false
		}
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, frag := range nonRetryableFragments {
		if strings.Contains(msg, frag) {
			return false
		}
	}
	return true
}

func hasCode(err error, code string) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Code == code
}
