//go:build integration && windows

package mfcam

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCameraCapture(t *testing.T) {
	devices, err := ListDevices()
	require.NoError(t, err)
	if len(devices) == 0 {
		t.Skip("no capture device attached")
	}
	for _, d := range devices {
		t.Logf("found %s (%s)", d.FriendlyName, d.SymbolicLink)
	}

	cam, err := NewDefaultCamera()
	require.NoError(t, err)
	defer cam.Close()

	require.NoError(t, cam.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for i := 0; i < 5; i++ {
		f, err := cam.WaitForFrameContext(ctx)
		require.NoError(t, err)
		w, h := f.Size()
		assert.NotZero(t, w)
		assert.NotZero(t, h)
		assert.Len(t, f.Data().Uint32(), int(w*h))
	}

	require.NoError(t, cam.Stop())
}

func TestCameraControlRoundTrip(t *testing.T) {
	cam, err := NewDefaultCamera()
	if err != nil {
		t.Skipf("no camera: %v", err)
	}
	defer cam.Close()

	r, err := cam.ControlRange(ControlBrightness)
	if err != nil {
		t.Skipf("brightness not exposed: %v", err)
	}
	orig, err := cam.GetControl(ControlBrightness)
	require.NoError(t, err)
	defer cam.SetControl(ControlBrightness, orig)

	want := r.Clamp(r.Default + r.Step)
	require.NoError(t, cam.SetControl(ControlBrightness, ControlValue{Value: want}))
	got, err := cam.GetControl(ControlBrightness)
	require.NoError(t, err)
	assert.Equal(t, want, got.Value)
}
