package portal

import (
	"errors"
	"fmt"
)

// Configuration problems found by Init. A surface that fails Init stays inert:
// it never renders or teleports, but the rest of the frame carries on.
var (
	ErrNoLinkedPortal = errors.New("no linked surface")
	ErrNoScreen       = errors.New("no screen geometry")
	ErrNoCamera       = errors.New("no player camera")
	ErrNoRenderer     = errors.New("no renderer")
	ErrAlreadyLinked  = errors.New("already linked to another surface")
	ErrSelfLink       = errors.New("cannot link a surface to itself")
)

// ConfigurationError reports a misconfigured portal or painting.
type ConfigurationError struct {
	Surface string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("surface %q: %v", e.Surface, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configError(surface string, err error) *ConfigurationError {
	return &ConfigurationError{Surface: surface, Err: err}
}
