package mfcam

import "fmt"

// Device describes a video capture device found by Media Foundation.
type Device struct {
	Index        int
	FriendlyName string
	SymbolicLink string
}

func (d Device) String() string {
	if d.FriendlyName == "" {
		return fmt.Sprintf("device %d", d.Index)
	}
	return d.FriendlyName
}

// ListDevices returns every video capture device in enumeration order.
func ListDevices() ([]Device, error) {
	return defaultPlatform.listDevices()
}

func selectDevice(devices []Device, cfg Config) (Device, error) {
	if len(devices) == 0 {
		return Device{}, ErrNoDevice
	}
	if cfg.DeviceName != "" {
		for _, d := range devices {
			if d.FriendlyName == cfg.DeviceName || d.SymbolicLink == cfg.DeviceName {
				return d, nil
			}
		}
		return Device{}, fmt.Errorf("camera %q not found: %w", cfg.DeviceName, ErrNoDevice)
	}
	if cfg.DeviceIndex < 0 || cfg.DeviceIndex >= len(devices) {
		return Device{}, fmt.Errorf("camera index %d out of range (0-%d): %w", cfg.DeviceIndex, len(devices)-1, ErrNoDevice)
	}
	return devices[cfg.DeviceIndex], nil
}
