package auth

import "errors"

var (
	ErrNoToken          = errors.New("no stored token")
	ErrRoleNotSupported = errors.New("role not supported")
	ErrMalformedToken   = errors.New("malformed token")
	ErrSessionChanged   = errors.New("session changed while refreshing")
)
