package mfcam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "initialized", EventInitialized.String())
	assert.Equal(t, "output-media-type-set", EventOutputMediaTypeSet.String())
	assert.Equal(t, "EventKind(99)", EventKind(99).String())
	assert.Equal(t, "EventKind(-1)", EventKind(-1).String())
}

func TestEventErr(t *testing.T) {
	assert.NoError(t, Event{Kind: EventPreviewStarted}.Err())
	assert.ErrorIs(t, Event{Kind: EventPreviewStarted, Status: errBoom}.Err(), errBoom)
	assert.Error(t, Event{Kind: EventError}.Err())
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "preview-stopped", Event{Kind: EventPreviewStopped}.String())
	assert.Equal(t, "error (boom)", Event{Kind: EventError, Status: errBoom}.String())
}
