//go:build windows

package mfcam

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"
)

// Both capture engine callback interfaces are IUnknown plus a single method
// taking one interface pointer, so they share one vtable layout.
type callbackVtbl struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
	Invoke         uintptr
}

var (
	callbackVtblOnce sync.Once
	sharedVtbl       *callbackVtbl

	// live callback objects by address. The map also keeps them reachable
	// while only the capture engine holds a reference.
	liveCallbacks sync.Map
)

// comCallback is a COM object implemented in Go. The vtable pointer must stay
// the first field.
type comCallback struct {
	vtbl   *callbackVtbl
	iid    windows.GUID
	refs   atomic.Int32
	log    *slog.Logger
	invoke func(arg uintptr)
}

func newComCallback(iid windows.GUID, log *slog.Logger, invoke func(arg uintptr)) *comCallback {
	callbackVtblOnce.Do(func() {
		sharedVtbl = &callbackVtbl{
			QueryInterface: windows.NewCallback(callbackQueryInterface),
			AddRef:         windows.NewCallback(callbackAddRef),
			Release:        windows.NewCallback(callbackRelease),
			Invoke:         windows.NewCallback(callbackInvoke),
		}
	})
	cb := &comCallback{vtbl: sharedVtbl, iid: iid, log: log, invoke: invoke}
	cb.refs.Store(1)
	liveCallbacks.Store(uintptr(unsafe.Pointer(cb)), cb)
	return cb
}

// unknown returns the object as an interface pointer for the engine.
func (cb *comCallback) unknown() unsafe.Pointer {
	return unsafe.Pointer(cb)
}

// Release drops the reference taken at construction.
func (cb *comCallback) Release() {
	callbackRelease(uintptr(unsafe.Pointer(cb)))
}

func lookupCallback(this uintptr) *comCallback {
	v, ok := liveCallbacks.Load(this)
	if !ok {
		return nil
	}
	return v.(*comCallback)
}

func callbackQueryInterface(this, riid, ppv uintptr) uintptr {
	if ppv == 0 {
		return E_POINTER
	}
	out := (*uintptr)(unsafe.Pointer(ppv))
	*out = 0

	cb := lookupCallback(this)
	if cb == nil || riid == 0 {
		return E_NOINTERFACE
	}
	iid := *(*windows.GUID)(unsafe.Pointer(riid))
	if iid != IID_IUnknown && iid != cb.iid {
		return E_NOINTERFACE
	}
	cb.refs.Add(1)
	*out = this
	return S_OK
}

func callbackAddRef(this uintptr) uintptr {
	cb := lookupCallback(this)
	if cb == nil {
		return 0
	}
	return uintptr(cb.refs.Add(1))
}

func callbackRelease(this uintptr) uintptr {
	cb := lookupCallback(this)
	if cb == nil {
		return 0
	}
	n := cb.refs.Add(-1)
	if n <= 0 {
		liveCallbacks.Delete(this)
		return 0
	}
	return uintptr(n)
}

func callbackInvoke(this, arg uintptr) (ret uintptr) {
	cb := lookupCallback(this)
	if cb == nil {
		return E_FAIL
	}
	defer func() {
		if r := recover(); r != nil {
			cb.log.Error("capture callback panicked", "panic", r)
			ret = E_FAIL
		}
	}()
	cb.invoke(arg)
	return S_OK
}

// newEventCallback implements IMFCaptureEngineOnEventCallback.
func newEventCallback(b *bridge, log *slog.Logger) *comCallback {
	return newComCallback(IID_IMFCaptureEngineOnEventCallback, log, func(arg uintptr) {
		b.pushEvent(translateEvent((*IMFMediaEvent)(unsafe.Pointer(arg)), log))
	})
}

func translateEvent(ev *IMFMediaEvent, log *slog.Logger) Event {
	if ev == nil {
		return Event{Kind: EventUnknown}
	}
	guid, err := ev.GetExtendedType()
	if err != nil {
		return Event{Kind: EventError, Status: err}
	}
	kind, ok := captureEventGUIDs[guid]
	if !ok {
		log.Debug("unrecognized capture engine event", "guid", guidFormat(guid))
		kind = EventUnknown
	}

	out := Event{Kind: kind}
	status, err := ev.GetStatus()
	switch {
	case err != nil:
		log.Warn("read event status", "event", kind, "err", err)
	case int32(status) < 0:
		out.Status = ole.NewError(uintptr(status))
	}
	return out
}

// newSampleCallback implements IMFCaptureEngineOnSampleCallback. The sample
// is referenced until the bridge releases it.
func newSampleCallback(b *bridge, log *slog.Logger) *comCallback {
	return newComCallback(IID_IMFCaptureEngineOnSampleCallback, log, func(arg uintptr) {
		if arg == 0 {
			b.pushSample(nil)
			return
		}
		s := (*IMFSample)(unsafe.Pointer(arg))
		s.AddRef()
		b.pushSample(&mfSample{s: s})
	})
}
