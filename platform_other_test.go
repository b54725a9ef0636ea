//go:build !windows

package mfcam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnsupportedPlatform(t *testing.T) {
	_, err := ListDevices()
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = NewDefaultCamera()
	assert.ErrorIs(t, err, ErrUnsupported)
}
