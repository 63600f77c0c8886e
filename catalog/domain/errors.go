package domain

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrDecode     = errors.New("decode error")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage error")
)
