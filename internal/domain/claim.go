package domain

// Claim is the validated identity derived from a bearer credential.
// It lives for one request and is never persisted.
type Claim struct {
	Subject       SubjectID
	Email         string
	EmailVerified bool
}
