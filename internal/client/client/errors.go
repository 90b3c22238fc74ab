package client

import "errors"

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("rejected by server")
	ErrRateLimited   = errors.New("too many requests")
)
