package domain

import "errors"

var (
	ErrTribeNotFound          = errors.New("tribe not found")
	ErrSessionAlreadyRecorded = errors.New("session already recorded")
	ErrInvalidPlacement       = errors.New("invalid placement")
	ErrInvalidGameInfo        = errors.New("invalid game info")
)
