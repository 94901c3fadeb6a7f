package services

import "errors"

// Expected failure modes are plain sentinel values; callers branch on them
// and re-prompt. Anything else coming out of a service is a storage error.
var (
	// ErrDuplicate signals a unique-constraint conflict (username, email,
	// developer name).
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidCredentials signals a failed login. It deliberately does not
	// distinguish unknown user from wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
