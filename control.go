package mfcam

import "fmt"

// Control is a camera property exposed by the device driver through the
// DirectShow camera control and video processing amplifier interfaces.
type Control int

const (
	ControlPan Control = iota
	ControlTilt
	ControlRoll
	ControlZoom
	ControlExposure
	ControlIris
	ControlFocus

	ControlBrightness
	ControlContrast
	ControlHue
	ControlSaturation
	ControlSharpness
	ControlGamma
	ControlColorEnable
	ControlWhiteBalance
	ControlBacklightCompensation
	ControlGain
)

// Flags shared by both control interfaces.
const (
	controlFlagsAuto   = 0x0001
	controlFlagsManual = 0x0002
)

type controlInfo struct {
	name     string
	procAmp  bool
	property int32
}

var controls = map[Control]controlInfo{
	ControlPan:      {"pan", false, 0},
	ControlTilt:     {"tilt", false, 1},
	ControlRoll:     {"roll", false, 2},
	ControlZoom:     {"zoom", false, 3},
	ControlExposure: {"exposure", false, 4},
	ControlIris:     {"iris", false, 5},
	ControlFocus:    {"focus", false, 6},

	ControlBrightness:            {"brightness", true, 0},
	ControlContrast:              {"contrast", true, 1},
	ControlHue:                   {"hue", true, 2},
	ControlSaturation:            {"saturation", true, 3},
	ControlSharpness:             {"sharpness", true, 4},
	ControlGamma:                 {"gamma", true, 5},
	ControlColorEnable:           {"color-enable", true, 6},
	ControlWhiteBalance:          {"white-balance", true, 7},
	ControlBacklightCompensation: {"backlight-compensation", true, 8},
	ControlGain:                  {"gain", true, 9},
}

// Controls lists every control in declaration order.
func Controls() []Control {
	out := make([]Control, 0, len(controls))
	for c := ControlPan; c <= ControlGain; c++ {
		out = append(out, c)
	}
	return out
}

func (c Control) String() string {
	if info, ok := controls[c]; ok {
		return info.name
	}
	return fmt.Sprintf("Control(%d)", int(c))
}

func (c Control) info() (controlInfo, error) {
	info, ok := controls[c]
	if !ok {
		return controlInfo{}, fmt.Errorf("unknown control %d", int(c))
	}
	return info, nil
}

// ControlRange is the driver-reported domain of a control.
type ControlRange struct {
	Min, Max, Step, Default int32
	AutoSupported           bool
}

// Clamp snaps v onto the range's step grid and bounds.
func (r ControlRange) Clamp(v int32) int32 {
	if v < r.Min {
		v = r.Min
	}
	if v > r.Max {
		v = r.Max
	}
	if r.Step > 1 {
		// Offsets across the full int32 range overflow int32.
		off := (int64(v) - int64(r.Min)) / int64(r.Step) * int64(r.Step)
		v = int32(int64(r.Min) + off)
	}
	return v
}

// ControlValue is the current setting of a control.
type ControlValue struct {
	Value int32
	Auto  bool
}

func controlFlags(auto bool) int32 {
	if auto {
		return controlFlagsAuto
	}
	return controlFlagsManual
}
