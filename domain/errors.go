package domain

import "errors"

var (
	ErrItemNotFound      = errors.New("menu item not found")
	ErrInvalidSignalType = errors.New("invalid signal type")
	ErrInvalidScore      = errors.New("score must be between 0 and 1")
	ErrRecordNotFound    = errors.New("recommendation record not found")
)

var ErrPreferencesNotFound = errors.New("preferences not found")
