package engine

import "errors"

// ErrKitNotFound indicates a requested kit id is not in the catalog.
var ErrKitNotFound = errors.New("kit not found in catalog")
