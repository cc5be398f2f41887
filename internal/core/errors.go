package core

import "errors"

// Error codes carried on the wire in error payloads.
const (
	ErrCodeRoomNotFound    = "room_not_found"
	ErrCodeMatchInProgress = "match_in_progress"
	ErrCodeNotAuthorized   = "not_authorized"
	ErrCodeRoomFull        = "room_full"
	ErrCodeBadRequest      = "bad_request"
	ErrCodeRateLimited     = "rate_limited"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrMatchInProgress = errors.New("match already in progress")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrRoomFull        = errors.New("room is full")
)

// DuelError wraps a machine-readable code and a human-readable message.
type DuelError struct {
	Code    string
	Message string
}

func (e *DuelError) Error() string {
	return e.Message
}

func duelError(code, msg string) *DuelError {
	return &DuelError{Code: code, Message: msg}
}
