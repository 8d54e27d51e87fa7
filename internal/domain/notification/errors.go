package notification

import "errors"

var (
	ErrInvalidEvent            = errors.New("invalid notification event")
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrDeviceTokenNotFound     = errors.New("device token not found")
	ErrInvalidPlatform         = errors.New("invalid device platform")
	ErrInvalidTimeOfDay        = errors.New("invalid time of day")
	ErrInvalidChannelOverrides = errors.New("invalid channel overrides")
)
