package genbridge

import (
	"errors"
	"fmt"
	"strings"
)

// ValidateName checks that a profile name and optional env are safe for use in paths, URLs and cache keys.
// name must be non-empty; neither may contain path separators, "..", ':' or whitespace.
func ValidateName(name, env string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidName)
	}
	if err := validateSegment(name); err != nil {
		return fmt.Errorf("%w: name %q: %s", ErrInvalidName, name, err)
	}
	if env == "" {
		return nil
	}
	if err := validateSegment(env); err != nil {
		return fmt.Errorf("%w: env %q: %s", ErrInvalidName, env, err)
	}
	return nil
}

func validateSegment(s string) error {
	switch {
	case strings.Contains(s, ".."):
		return fmt.Errorf("must not contain %q", "..")
	case strings.ContainsAny(s, `/\:`):
		return errors.New("must not contain path separators or ':'")
	case strings.ContainsFunc(s, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }):
		return errors.New("must not contain whitespace")
	}
	return nil
}
