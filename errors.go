package segloop

import "errors"

var (
	// ErrInvalidRange rejects a playback request whose bounds or repeat
	// count are unusable. Raised before any state mutation.
	ErrInvalidRange = errors.New("invalid segment range")

	// ErrAlreadyPlaying rejects Start while a session is active.
	ErrAlreadyPlaying = errors.New("playback already in progress")

	// ErrStaging marks extraction/export failures. The session aborts,
	// cleans up and returns to idle.
	ErrStaging = errors.New("segment staging failed")

	// ErrDevice marks output device failures. Same recovery as ErrStaging.
	ErrDevice = errors.New("audio device failure")
)
