package jwt

import "errors"

var (
	ErrMissingSigningKey       = errors.New("jwt: signing key is required")
	ErrInvalidToken            = errors.New("jwt: invalid token")
	ErrExpiredToken            = errors.New("jwt: token has expired")
	ErrInvalidSignature        = errors.New("jwt: invalid signature")
	ErrUnexpectedSigningMethod = errors.New("jwt: unexpected signing method")
	ErrMissingClaims           = errors.New("jwt: claims are required")
)
