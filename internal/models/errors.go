package models

import "errors"

// ErrIndexNotFound is shared by every vector store backend.
var ErrIndexNotFound = errors.New("vector index not found")
