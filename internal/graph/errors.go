package graph

import "errors"

// ErrUnsupportedEdge is returned when an edge kind has no storage mapping.
var ErrUnsupportedEdge = errors.New("graph: unsupported edge kind")
