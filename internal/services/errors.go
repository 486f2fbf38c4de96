package services

import "errors"

var (
	ErrLostItemNotFound     = errors.New("lost item not found")
	ErrFoundItemNotFound    = errors.New("found item not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchExists          = errors.New("a match already exists between these items")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrMessageNotFound      = errors.New("message not found")

	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already registered")
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidTransition is returned for a status the match state machine
	// does not accept (currently only re-entry to pending).
	ErrInvalidTransition = errors.New("invalid status transition")
)
