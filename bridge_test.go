package mfcam

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeWaitEventSkipsOthers(t *testing.T) {
	b := newBridge(discardLogger())
	b.pushEvent(Event{Kind: EventCameraStreamBlocked})
	b.pushEvent(Event{Kind: EventPreviewStarted})

	ev, err := b.waitEvent(EventPreviewStarted, time.Second)
	require.NoError(t, err)
	assert.Equal(t, EventPreviewStarted, ev.Kind)
}

func TestBridgeWaitEventError(t *testing.T) {
	b := newBridge(discardLogger())
	b.pushEvent(Event{Kind: EventError, Status: errBoom})

	_, err := b.waitEvent(EventPreviewStarted, time.Second)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "preview-started")
}

func TestBridgeWaitEventTimeout(t *testing.T) {
	b := newBridge(discardLogger())
	_, err := b.waitEvent(EventInitialized, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestBridgeWaitEventClosed(t *testing.T) {
	b := newBridge(discardLogger())
	b.close()
	_, err := b.waitEvent(EventInitialized, time.Second)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBridgeEventQueueDropsOldest(t *testing.T) {
	b := newBridge(discardLogger())
	b.pushEvent(Event{Kind: EventPreviewStarted})
	for i := 0; i < eventQueueSize; i++ {
		b.pushEvent(Event{Kind: EventPhotoTaken})
	}
	assert.Len(t, b.events, eventQueueSize)

	_, err := b.waitEvent(EventPreviewStarted, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestBridgeFailLatchesFirstError(t *testing.T) {
	b := newBridge(discardLogger())
	b.pushEvent(Event{Kind: EventError, Status: errBoom})
	b.pushEvent(Event{Kind: EventError})

	_, err := b.nextSample(context.Background())
	assert.ErrorIs(t, err, errBoom)
}

func TestBridgeSampleSlot(t *testing.T) {
	b := newBridge(discardLogger())
	samples := []*fakeSample{{}, {}, {}}
	for _, s := range samples {
		b.pushSample(s)
	}
	assert.True(t, samples[0].released.Load())
	assert.True(t, samples[1].released.Load())
	assert.False(t, samples[2].released.Load())
	assert.Equal(t, uint64(2), b.dropped.Load())

	s, err := b.nextSample(context.Background())
	require.NoError(t, err)
	assert.Same(t, samples[2], s)
}

func TestBridgeEndOfStreamReplacesSample(t *testing.T) {
	b := newBridge(discardLogger())
	pending := &fakeSample{}
	b.pushSample(pending)
	b.pushSample(nil)

	s, err := b.nextSample(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.True(t, pending.released.Load())
}

func TestBridgeNextSampleAfterClose(t *testing.T) {
	b := newBridge(discardLogger())
	b.pushSample(&fakeSample{})
	b.close()
	b.close()

	_, err := b.nextSample(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBridgeIgnoresEventsAfterClose(t *testing.T) {
	b := newBridge(discardLogger())
	b.close()
	b.pushEvent(Event{Kind: EventError, Status: errBoom})
	assert.Empty(t, b.events)
	assert.NoError(t, b.err)
}

func TestBridgeDropsSamplesAfterFailure(t *testing.T) {
	b := newBridge(discardLogger())
	b.pushEvent(Event{Kind: EventError, Status: errBoom})

	s := &fakeSample{}
	b.pushSample(s)
	assert.True(t, s.released.Load())
	assert.Empty(t, b.samples)

	_, err := b.nextSample(context.Background())
	assert.ErrorIs(t, err, errBoom)
}
