package identity

import (
	"fmt"

	"github.com/colexalia/colexalia-backend/internal/common"
)

// Error codes reported by the identity provider
const (
	CodeEmailInUse          = "auth/email-already-in-use"
	CodeAccountExists       = "auth/account-exists-with-different-credential"
	CodeInvalidEmail        = "auth/invalid-email"
	CodeWeakPassword        = "auth/weak-password"
	CodeInvalidCredential   = "auth/invalid-credential"
	CodeInvalidToken        = "auth/invalid-token"
	CodeOperationNotAllowed = "auth/operation-not-allowed"
	CodeInternal            = "auth/internal-error"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// Error is a provider failure with a stable code
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is maps codes onto the shared sentinels.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case CodeEmailInUse, CodeAccountExists:
		return target == common.ErrUserAlreadyExists
	case CodeInvalidCredential:
		return target == common.ErrInvalidCredentials
	case CodeInvalidToken:
		return target == common.ErrInvalidToken
	case CodeInvalidEmail, CodeWeakPassword:
		return target == common.ErrInvalidInput
	}
	return false
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}
