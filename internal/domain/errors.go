package domain

import "errors"

var (
	ErrDeviceNameEmpty     = errors.New("device name is empty")
	ErrDeviceNotFound      = errors.New("device not found")
	ErrDeviceNotAuthorized = errors.New("device not registered for user")
	ErrSessionActive       = errors.New("session already active")
)
