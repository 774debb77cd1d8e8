package source

import "errors"

// Domain errors for the source package.
//
//	if errors.Is(err, source.ErrDuplicateName) {
//	    // two entries share a name
//	}
var (
	// ErrDuplicateName is returned when two definitions share a name.
	ErrDuplicateName = errors.New("source: duplicate name")

	// ErrInvalidDefinition is returned when a definition fails validation.
	ErrInvalidDefinition = errors.New("source: invalid definition")
)
