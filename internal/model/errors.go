package model

import "errors"

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidFormat is returned when an uploaded image has a mime type
	// outside the allowed set.
	ErrInvalidFormat = errors.New("unsupported image format, only PNG and JPEG are allowed")
	// ErrPayloadTooLarge is returned when an uploaded image exceeds the
	// size ceiling.
	ErrPayloadTooLarge = errors.New("image exceeds the maximum allowed size")
	// ErrReadFailed is returned when the uploaded file could not be read.
	ErrReadFailed = errors.New("failed to read uploaded file")
	// ErrInvalidSignatureType is returned for a signature type outside the
	// closed enumeration.
	ErrInvalidSignatureType = errors.New("unknown signature type")
	// ErrEmailTaken is returned on registration with an existing email.
	ErrEmailTaken = errors.New("email is already taken")
	// ErrInvalidCredentials is returned on login with a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
