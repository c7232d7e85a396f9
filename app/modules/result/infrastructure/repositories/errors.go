package resultdb

import "errors"

// ErrInvalidPage is returned when a page window has a negative offset or a non-positive limit.
var ErrInvalidPage = errors.New("invalid page window")
