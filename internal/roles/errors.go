package roles

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownRole   = errors.New("unknown role")
	ErrConfiguration = errors.New("invalid role catalog")
)

// UnknownRoleError reports a role code that is not in the catalog. It is never a
// denial: callers must fail the whole check, since it means stale data or a bad deploy.
type UnknownRoleError struct {
	Code string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown role %q", e.Code)
}

func (e *UnknownRoleError) Is(target error) bool {
	return target == ErrUnknownRole
}

// ConfigurationError lists every problem found while validating a catalog definition.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "invalid role catalog: " + strings.Join(e.Problems, "; ")
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// problems collects validation failures so a bad catalog reports all of them at once.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return &ConfigurationError{Problems: p}
}
