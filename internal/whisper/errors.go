package whisper

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument marks caller mistakes such as a blank model
	// reference or a non-positive batch size.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfig marks a missing or malformed config.json in a model snapshot.
	ErrConfig = errors.New("invalid model config")

	// ErrWeightsNotFound is returned when a snapshot contains none of the
	// recognized weights artifacts.
	ErrWeightsNotFound = errors.New("no weights artifact found")

	// ErrSourceUnavailable marks a failed snapshot fetch from the remote hub.
	ErrSourceUnavailable = errors.New("model source unavailable")
)

// UnknownModelError is returned when a model reference matches no registry
// entry and does not look like an explicit path or repo.
type UnknownModelError struct {
	Name  string
	Known []string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model %q (known models: %s)", e.Name, strings.Join(e.Known, ", "))
}
