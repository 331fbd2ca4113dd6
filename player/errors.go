package player

import "errors"

var (
	ErrInvalidAddress       = errors.New("invalid destination address")
	ErrInvalidConfiguration = errors.New("invalid playback configuration")
	ErrAlreadyPlaying       = errors.New("playback already active")
	ErrNoBuffer             = errors.New("no buffer bound")
)
