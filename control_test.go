package mfcam

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControlsOrder(t *testing.T) {
	all := Controls()
	assert.Len(t, all, len(controls))
	assert.Equal(t, ControlPan, all[0])
	assert.Equal(t, ControlGain, all[len(all)-1])
}

func TestControlString(t *testing.T) {
	assert.Equal(t, "white-balance", ControlWhiteBalance.String())
	assert.Equal(t, "Control(42)", Control(42).String())

	_, err := Control(42).info()
	assert.Error(t, err)

	info, err := ControlGain.info()
	assert.NoError(t, err)
	assert.True(t, info.procAmp)
	assert.Equal(t, int32(9), info.property)
}

func TestControlRangeClamp(t *testing.T) {
	r := ControlRange{Min: 0, Max: 250, Step: 5}
	tests := []struct {
		in, want int32
	}{
		{-10, 0},
		{0, 0},
		{12, 10},
		{15, 15},
		{251, 250},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Clamp(tt.in), "clamp %d", tt.in)
	}

	r = ControlRange{Min: -7, Max: 3, Step: 2}
	assert.Equal(t, int32(-5), r.Clamp(-4))

	r = ControlRange{Min: math.MinInt32, Max: math.MaxInt32, Step: 2}
	assert.Equal(t, int32(math.MaxInt32-1), r.Clamp(math.MaxInt32))
	assert.Equal(t, int32(math.MinInt32), r.Clamp(math.MinInt32))
	assert.Equal(t, int32(0), r.Clamp(1))
}

func TestControlFlags(t *testing.T) {
	assert.Equal(t, int32(controlFlagsAuto), controlFlags(true))
	assert.Equal(t, int32(controlFlagsManual), controlFlags(false))
}
