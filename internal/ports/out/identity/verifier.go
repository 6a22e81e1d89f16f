package identity

import (
	"context"
	"errors"

	"github.com/skillsprint/roadmap-api/internal/domain"
)

// Reason classifies why a credential was rejected.
type Reason string

const (
	// ReasonMissingToken: no credential, or the header does not use the exact "Bearer " scheme.
	ReasonMissingToken Reason = "missing_token"
	// ReasonMalformed: the credential cannot be parsed as an ID token.
	ReasonMalformed Reason = "malformed"
	// ReasonInvalidOrExpired: signature, issuer, audience or time checks failed.
	ReasonInvalidOrExpired Reason = "invalid_or_expired"
)

// AuthError is returned by Verifier implementations and the bearer middleware.
type AuthError struct {
	Reason Reason
	Err    error
}

func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return string(e.Reason) + ": " + e.Err.Error()
	}
	return string(e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ReasonOf extracts the AuthError reason, defaulting to ReasonInvalidOrExpired for foreign errors.
func ReasonOf(err error) Reason {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return ReasonInvalidOrExpired
}

// Verifier validates an opaque bearer token and returns the identity it proves.
// One attempt per call; implementations do not retry.
type Verifier interface {
	Verify(ctx context.Context, token string) (domain.Claim, error)
}
