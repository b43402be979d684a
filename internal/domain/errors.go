package domain

import "errors"

var (
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token is expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCSRFInvalid        = errors.New("csrf token is invalid")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrDeliveryFailed     = errors.New("mail delivery failed")
	ErrStorageUnavailable = errors.New("local storage unavailable")
)
