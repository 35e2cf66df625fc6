package domain

import "errors"

// Domain errors (no external dependencies).
var (
	ErrNotFound     = errors.New("resource not found")
	ErrBadRequest   = errors.New("malformed or incomplete payload")
	ErrValidation   = errors.New("record is missing fields required by the Supply schema")
	ErrUnauthorized = errors.New("unauthorized")
	ErrDuplicate    = errors.New("duplicate resource")
)
