package service

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrMissingField     = errors.New("missing required field")
	ErrCallbackRejected = errors.New("callback rejected")
)
