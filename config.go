package mfcam

import (
	"log/slog"
	"time"
)

// Config selects the capture device and bounds how long the camera waits on
// the capture engine.
type Config struct {
	// DeviceIndex is the position in the enumeration order. Ignored when
	// DeviceName is set.
	DeviceIndex int
	// DeviceName matches a device's friendly name or symbolic link.
	DeviceName string

	InitTimeout  time.Duration // Initialized event, default 10 seconds
	EventTimeout time.Duration // preview start/stop events, default 5 seconds

	Logger *slog.Logger
}

// DefaultConfig returns a configuration that opens the first device.
func DefaultConfig() Config {
	return Config{
		InitTimeout:  10 * time.Second,
		EventTimeout: 5 * time.Second,
		Logger:       slog.Default(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InitTimeout <= 0 {
		c.InitTimeout = d.InitTimeout
	}
	if c.EventTimeout <= 0 {
		c.EventTimeout = d.EventTimeout
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	return c
}
