package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrForbidden           = errors.New("access forbidden")
	ErrNotFound            = errors.New("not found")
	ErrDuplicateEntity     = errors.New("entity already exists")
	ErrGenerationExhausted = errors.New("failed to generate unique identifier")
	ErrInvalidInvite       = errors.New("invalid or expired invite code")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidSecret       = errors.New("invalid secret")
)

// ErrInviteConsumed is returned when a registration lost the race for its
// invite. It matches ErrInvalidInvite and the caller may retry with another code.
var ErrInviteConsumed = fmt.Errorf("%w: already consumed by another registration", ErrInvalidInvite)
