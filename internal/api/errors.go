package api

import "errors"

var (
	ErrBodyTooLarge = errors.New("request body too large")
	ErrEmptyBody    = errors.New("empty request body")
)
