package domain

import "errors"

// ErrNotFound reports a lookup for an object id the catalog does not track.
var ErrNotFound = errors.New("not found")
