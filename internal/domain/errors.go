package domain

import "errors"

var (
	ErrInvalidState  = errors.New("conversation: invalid state")
	ErrNotConfigured = errors.New("notifier: not configured")
)
