//go:build !windows

package mfcam

import "log/slog"

var defaultPlatform platform = unsupportedPlatform{}

type unsupportedPlatform struct{}

func (unsupportedPlatform) listDevices() ([]Device, error) {
	return nil, ErrUnsupported
}

func (unsupportedPlatform) open(Device, *bridge, *slog.Logger) (engine, error) {
	return nil, ErrUnsupported
}
