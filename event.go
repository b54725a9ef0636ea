package mfcam

import "fmt"

// EventKind identifies a capture engine notification.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventInitialized
	EventPreviewStarted
	EventPreviewStopped
	EventRecordStarted
	EventRecordStopped
	EventPhotoTaken
	EventError
	EventCameraStreamBlocked
	EventCameraStreamUnblocked
	EventOutputMediaTypeSet
)

var eventKindNames = [...]string{
	EventUnknown:               "unknown",
	EventInitialized:           "initialized",
	EventPreviewStarted:        "preview-started",
	EventPreviewStopped:        "preview-stopped",
	EventRecordStarted:         "record-started",
	EventRecordStopped:         "record-stopped",
	EventPhotoTaken:            "photo-taken",
	EventError:                 "error",
	EventCameraStreamBlocked:   "camera-stream-blocked",
	EventCameraStreamUnblocked: "camera-stream-unblocked",
	EventOutputMediaTypeSet:    "output-media-type-set",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventKindNames[k]
}

// Event is a capture engine notification. Status is non-nil when the engine
// attached a failure code to the event.
type Event struct {
	Kind   EventKind
	Status error
}

func (e Event) String() string {
	if e.Status != nil {
		return fmt.Sprintf("%s (%v)", e.Kind, e.Status)
	}
	return e.Kind.String()
}

// Err returns the failure carried by the event, if any. Error events without
// a status still count as failures.
func (e Event) Err() error {
	if e.Status != nil {
		return e.Status
	}
	if e.Kind == EventError {
		return fmt.Errorf("capture engine reported an error")
	}
	return nil
}
