package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrSizeNotFound    = errors.New("size not in chart")
	ErrUnknownBrand    = errors.New("unknown brand")
	ErrUnknownStrategy = errors.New("unknown scoring strategy")
	ErrLockHeld        = errors.New("lock already held")
	ErrBadRecord       = errors.New("malformed source record")
)
