package checkout

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to check out")
	ErrSubmissionInProgress = errors.New("checkout is already being submitted")
	ErrAlreadyCompleted     = errors.New("checkout already completed")
	ErrIllegalTransition    = errors.New("illegal transition of checkout status")
)

// ValidationError carries one message per invalid form field, keyed by the
// field's JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid checkout form: " + strings.Join(names, ", ")
}
