package common

import (
	"errors"
	"fmt"
)

// Business logic errors
var (
	// General errors
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")

	// Pricing errors
	ErrProductNotFound = errors.New("product not found")

	// Auth errors
	ErrAuthRequired       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

// LookupError is a failure of the price provider: transport, non-success status or malformed payload.
// Message carries the provider's own error text when it sent one.
type LookupError struct {
	Op       string
	Message  string
	NotFound bool
	Err      error
}

func (e *LookupError) Error() string {
	return e.Message
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Is matches ErrProductNotFound for lookups of unknown products.
func (e *LookupError) Is(target error) bool {
	return e.NotFound && target == ErrProductNotFound
}

// AuthRequiredError is returned by store mutations attempted while signed out.
type AuthRequiredError struct {
	Action string
}

func (e *AuthRequiredError) Error() string {
	if e.Action == "" {
		return "user must be logged in"
	}
	return fmt.Sprintf("user must be logged in to %s", e.Action)
}

func (e *AuthRequiredError) Is(target error) bool {
	return target == ErrAuthRequired
}

// StoreError wraps a failure of the document store.
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// AuthProviderError passes an identity provider failure through with the provider's message.
type AuthProviderError struct {
	Op  string
	Err error
}

func (e *AuthProviderError) Error() string {
	return e.Err.Error()
}

func (e *AuthProviderError) Unwrap() error {
	return e.Err
}
