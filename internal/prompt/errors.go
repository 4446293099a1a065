package prompt

import (
	"errors"
	"fmt"
)

var ErrUnsupportedFramework = errors.New("unsupported framework")

// UnsupportedFrameworkError names a framework absent from the catalog for a target.
type UnsupportedFrameworkError struct {
	Target    Target
	Framework string
}

func (e *UnsupportedFrameworkError) Error() string {
	return fmt.Sprintf("unsupported %s framework: %q", e.Target, e.Framework)
}

func (e *UnsupportedFrameworkError) Is(target error) bool {
	return target == ErrUnsupportedFramework
}
