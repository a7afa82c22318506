package store

import "errors"

// ErrNotInteger is returned by Incr when the existing value is not an integer.
var ErrNotInteger = errors.New("store: value is not an integer")
