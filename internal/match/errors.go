package match

import "errors"

var (
	ErrConfiguration = errors.New("invalid match configuration")
	ErrInvalidState  = errors.New("action not allowed in current match state")
	ErrUnknownPlayer = errors.New("unknown player")
	ErrInvalidAction = errors.New("invalid action")
)
