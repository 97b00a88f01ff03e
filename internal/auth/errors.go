package auth

import "errors"

// closed error taxonomy - every auth failure maps to one of these,
// and each one has a fixed user-facing message
var (
	ErrInvalidEmail      = errors.New("invalid email")
	ErrWeakPassword      = errors.New("weak password")
	ErrEmailAlreadyInUse = errors.New("email already in use")
	ErrWrongCredentials  = errors.New("wrong credentials")
	ErrSessionNotFound   = errors.New("session not found")
)

const defaultAuthErrMessage = "authentication failed, please try again"

var errMessages = map[error]string{
	ErrInvalidEmail:      "that does not look like a valid email address",
	ErrWeakPassword:      "password too weak, use at least 8 characters",
	ErrEmailAlreadyInUse: "an account with that email already exists",
	ErrWrongCredentials:  "wrong email or password",
	ErrSessionNotFound:   "session expired, please log in again",
}

// UserFacingMessage maps an auth error to the message shown to the
// user. Unrecognized errors get the generic fallback.
func UserFacingMessage(err error) string {
	for authErr, msg := range errMessages {
		if errors.Is(err, authErr) {
			return msg
		}
	}
	return defaultAuthErrMessage
}
