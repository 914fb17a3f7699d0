package auth

import "errors"

var (
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrTokenExpired           = errors.New("token has expired")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrEmailNotVerified       = errors.New("google account email is not verified")
	ErrStateCookieNotFound    = errors.New("oauth state cookie not found")
	ErrStateMismatch          = errors.New("oauth state mismatch")
	ErrMissingAuthCode        = errors.New("oauth authorization code missing")
)
