package repository

import "errors"

// ErrDuplicate wraps unique constraint violations so services can react
// without knowing the database dialect.
var ErrDuplicate = errors.New("duplicate record")
