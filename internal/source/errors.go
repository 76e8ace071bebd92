package source

import "errors"

// ErrNotSource is returned when a directory argument holds no C++ sources.
var ErrNotSource = errors.New("no C++ source files")
