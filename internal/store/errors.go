package store

import "errors"

var (
	ErrNotFound  = errors.New("store: resource not found")
	ErrDuplicate = errors.New("store: duplicate resource")
	ErrCorrupt   = errors.New("store: stored record cannot be decoded")
)
