// errors.go
package prefhook

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput      = errors.New("invalid input parameters")
	ErrInvalidKey        = errors.New("invalid preference key")
	ErrInvalidDefinition = errors.New("invalid preference definition")
	ErrInvalidValue      = errors.New("invalid preference value")
	ErrNotFound          = errors.New("preference not found")
	ErrKeyCollision      = errors.New("preference key collision")
	ErrDuplicateHook     = errors.New("hook already registered")
	ErrHookFailed        = errors.New("hook invocation failed")
	ErrCacheUnavailable  = errors.New("cache backend unavailable")
)

// CollisionError reports a preference key returned by more than one module.
type CollisionError struct {
	Key     string
	Modules []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: %q defined by %s", ErrKeyCollision, e.Key, strings.Join(e.Modules, ", "))
}

func (e *CollisionError) Unwrap() error {
	return ErrKeyCollision
}
