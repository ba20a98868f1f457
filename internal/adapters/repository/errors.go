package repository

import "errors"

// ErrStorage marks failures of the underlying storage engine.
var ErrStorage = errors.New("storage failure")
