package suite

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is wrapped by every error that prevents a run from starting.
	ErrConfiguration = errors.New("configuration error")

	// ErrDuplicateName is returned when a name is registered twice in the same suite.
	ErrDuplicateName = fmt.Errorf("%w: duplicate name", ErrConfiguration)

	// ErrNoTests is returned when a suite, or a whole run, has nothing to execute.
	ErrNoTests = fmt.Errorf("%w: no tests found", ErrConfiguration)

	// ErrInvalidRegistration is returned for malformed tests, hooks or suites.
	ErrInvalidRegistration = fmt.Errorf("%w: invalid registration", ErrConfiguration)
)
