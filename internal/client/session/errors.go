package session

import "errors"

// Error kinds returned by Store operations. The collaborator's own error is
// kept in the chain, so errors.Is matches both the kind and the cause.
var (
	ErrAuthentication   = errors.New("authentication failed")
	ErrRegistration     = errors.New("registration failed")
	ErrDelivery         = errors.New("password reset delivery failed")
	ErrValidation       = errors.New("profile validation failed")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrStorage          = errors.New("session storage failed")
)
