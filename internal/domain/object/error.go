package object

import "errors"

var (
	ErrNotFound         = errors.New("object not found")
	ErrInvalidKey       = errors.New("invalid object key")
	ErrSignatureInvalid = errors.New("invalid signature")
	ErrSignatureExpired = errors.New("signature expired")
)
