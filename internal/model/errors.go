package model

import "errors"

// ErrInvalidToken covers every token that fails signature, expiry or shape checks.
var ErrInvalidToken = errors.New("invalid token")
