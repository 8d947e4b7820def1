package session

import (
	"errors"
	"fmt"
)

var ErrIncompleteResponse = errors.New("auth response is missing the user or the token")

// AuthError is returned by Login and Register. The cause stays reachable
// through errors.Is and errors.As.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
