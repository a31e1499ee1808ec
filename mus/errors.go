package mus

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds the engine distinguishes. Configuration errors are surfaced
// before any solver mutation; structural errors indicate the model itself
// violates an invariant the engine requires.
var (
	ErrConfiguration = errors.New("mus: configuration error")
	ErrStructural    = errors.New("mus: structural error")
)

func newConfigurationError(format string, args ...interface{}) error {
	return errors.Wrap(ErrConfiguration, fmt.Sprintf(format, args...))
}

func newStructuralError(format string, args ...interface{}) error {
	return errors.Wrap(ErrStructural, fmt.Sprintf(format, args...))
}
