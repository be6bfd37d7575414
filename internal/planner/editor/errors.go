package editor

import "errors"

var (
	ErrLocked         = errors.New("canvas is locked")
	ErrBusy           = errors.New("another interaction is in progress")
	ErrNoSession      = errors.New("no interaction in progress")
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomActive     = errors.New("room is being dragged or resized")
	ErrSessionActive  = errors.New("layout cannot be replaced during an interaction")
	ErrCanvasNotFound = errors.New("canvas not found")
	ErrBadHandle      = errors.New("unknown resize handle")
	ErrBadTemplate    = errors.New("template type is required")
	ErrNoSpace        = errors.New("no free space on canvas for room")
)
