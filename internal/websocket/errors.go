package websocket

import "errors"

var (
	ErrMessageBufferFull = errors.New("message buffer is full")
	ErrSessionClosed     = errors.New("session closed")
)
