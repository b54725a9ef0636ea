package mfcam

import "errors"

var (
	ErrUnsupported = errors.New("media foundation capture requires windows")
	ErrNoDevice    = errors.New("no video capture device")
	ErrClosed      = errors.New("camera closed")
	ErrTimeout     = errors.New("timed out waiting for capture engine")
	ErrNoControl   = errors.New("camera control not available")
)
