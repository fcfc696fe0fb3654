package domain

import "errors"

var (
	ErrInvalidRoomID   = errors.New("invalid room id")
	ErrRoomNotFound    = errors.New("room not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrNotMember       = errors.New("user is not a member of the room")
	ErrNotFriends      = errors.New("users are not friends")
	ErrNotAllowed      = errors.New("action not allowed")
)
