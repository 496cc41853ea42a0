package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNoSnapshot   = errors.New("no snapshot yet")
	ErrWSDisconnect = errors.New("websocket disconnected")
	ErrLockHeld     = errors.New("lock already held")
)
