//go:build windows

package mfcam

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kevmo314/go-mfcam/pkg/pixfmt"
)

type mfPlatform struct{}

var defaultPlatform platform = mfPlatform{}

func (mfPlatform) listDevices() ([]Device, error) {
	if err := mfStartup(); err != nil {
		return nil, err
	}
	defer mfShutdown()

	activates, err := enumDeviceSources()
	if err != nil {
		return nil, err
	}
	devices := make([]Device, len(activates))
	for i, a := range activates {
		devices[i] = describeActivate(i, a)
		a.Release()
	}
	return devices, nil
}

// findActivate re-enumerates and returns the activation object for dev,
// matching on the symbolic link when there is one.
func findActivate(dev Device) (*IMFActivate, error) {
	activates, err := enumDeviceSources()
	if err != nil {
		return nil, err
	}
	var found *IMFActivate
	for i, a := range activates {
		if found == nil {
			d := describeActivate(i, a)
			if (dev.SymbolicLink != "" && d.SymbolicLink == dev.SymbolicLink) ||
				(dev.SymbolicLink == "" && i == dev.Index) {
				found = a
				continue
			}
		}
		a.Release()
	}
	if found == nil {
		return nil, fmt.Errorf("%s disappeared: %w", dev, ErrNoDevice)
	}
	return found, nil
}

func (mfPlatform) open(dev Device, b *bridge, log *slog.Logger) (engine, error) {
	if err := mfStartup(); err != nil {
		return nil, err
	}
	e := &mfEngine{log: log, started: true}
	ok := false
	defer func() {
		if !ok {
			e.close()
		}
	}()

	var err error
	if e.engine, err = newCaptureEngine(); err != nil {
		return nil, err
	}
	e.events = newEventCallback(b, log)
	e.samples = newSampleCallback(b, log)

	if e.activate, err = findActivate(dev); err != nil {
		return nil, err
	}
	if e.source, err = e.activate.ActivateMediaSource(); err != nil {
		return nil, err
	}

	attrs, err := mfCreateAttributes(1)
	if err != nil {
		return nil, err
	}
	defer attrs.Release()
	if err := attrs.SetUINT32(&MF_CAPTURE_ENGINE_USE_VIDEO_DEVICE_ONLY, 1); err != nil {
		return nil, err
	}

	if err := e.engine.Initialize(e.events.unknown(), attrs, e.source); err != nil {
		return nil, err
	}
	log.Debug("capture engine initializing")
	ok = true
	return e, nil
}

type mfEngine struct {
	log     *slog.Logger
	started bool

	activate *IMFActivate
	source   *IMFMediaSource
	engine   *IMFCaptureEngine
	events   *comCallback
	samples  *comCallback

	sink       *IMFCapturePreviewSink
	sinkStream uint32

	cameraControl *IAMControl
	procAmp       *IAMControl
}

func (e *mfEngine) prepareSampleSink() error {
	src, err := e.engine.GetSource()
	if err != nil {
		return err
	}
	defer src.Release()

	current, err := src.GetCurrentDeviceMediaType(MF_CAPTURE_ENGINE_PREFERRED_SOURCE_STREAM_FOR_VIDEO_PREVIEW)
	if err != nil {
		return err
	}
	defer current.Release()

	mt, err := mfCreateMediaType()
	if err != nil {
		return err
	}
	defer mt.Release()
	if err := current.AsAttributes().CopyAllItems(mt.AsAttributes()); err != nil {
		return err
	}
	if err := mt.AsAttributes().SetGUID(&MF_MT_SUBTYPE, &MFVideoFormat_RGB32); err != nil {
		return err
	}

	sink, err := e.engine.GetPreviewSink()
	if err != nil {
		return err
	}
	e.sink = sink
	if err := sink.RemoveAllStreams(); err != nil {
		return err
	}
	idx, err := sink.AddStream(MF_CAPTURE_ENGINE_PREFERRED_SOURCE_STREAM_FOR_VIDEO_PREVIEW, mt)
	if err != nil {
		return err
	}
	if err := sink.SetSampleCallback(idx, e.samples.unknown()); err != nil {
		return err
	}
	e.sinkStream = idx

	if w, h, err := mt.AsAttributes().GetFrameSize(); err == nil {
		e.log.Debug("preview stream added", "stream", idx, "width", w, "height", h)
	}
	return nil
}

func (e *mfEngine) startPreview() error {
	return e.engine.StartPreview()
}

func (e *mfEngine) stopPreview() error {
	return e.engine.StopPreview()
}

func (e *mfEngine) outputSize() (uint32, uint32, error) {
	if e.sink == nil {
		return 0, 0, errors.New("preview sink not prepared")
	}
	mt, err := e.sink.GetOutputMediaType(e.sinkStream)
	if err != nil {
		return 0, 0, err
	}
	defer mt.Release()
	return mt.AsAttributes().GetFrameSize()
}

// control returns the DirectShow control interface serving ctl. Interfaces
// are queried from the media source once and cached.
func (e *mfEngine) control(ctl Control) (*IAMControl, int32, error) {
	info, err := ctl.info()
	if err != nil {
		return nil, 0, err
	}
	cached, iid := &e.cameraControl, &IID_IAMCameraControl
	if info.procAmp {
		cached, iid = &e.procAmp, &IID_IAMVideoProcAmp
	}
	if *cached == nil {
		p, err := e.source.QueryInterface(iid)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", ctl, ErrNoControl)
		}
		*cached = (*IAMControl)(p)
	}
	return *cached, info.property, nil
}

func (e *mfEngine) controlRange(ctl Control) (ControlRange, error) {
	c, prop, err := e.control(ctl)
	if err != nil {
		return ControlRange{}, err
	}
	lo, hi, step, def, flags, err := c.GetRange(prop)
	if err != nil {
		return ControlRange{}, fmt.Errorf("%s: %w", ctl, errors.Join(ErrNoControl, err))
	}
	return ControlRange{
		Min:           lo,
		Max:           hi,
		Step:          step,
		Default:       def,
		AutoSupported: flags&controlFlagsAuto != 0,
	}, nil
}

func (e *mfEngine) getControl(ctl Control) (ControlValue, error) {
	c, prop, err := e.control(ctl)
	if err != nil {
		return ControlValue{}, err
	}
	v, flags, err := c.Get(prop)
	if err != nil {
		return ControlValue{}, fmt.Errorf("get %s: %w", ctl, err)
	}
	return ControlValue{Value: v, Auto: flags&controlFlagsAuto != 0}, nil
}

func (e *mfEngine) setControl(ctl Control, v ControlValue) error {
	c, prop, err := e.control(ctl)
	if err != nil {
		return err
	}
	if err := c.Set(prop, v.Value, controlFlags(v.Auto)); err != nil {
		return fmt.Errorf("set %s: %w", ctl, err)
	}
	return nil
}

// close releases everything in reverse order of acquisition. The engine goes
// before the callbacks so no further invocations arrive.
func (e *mfEngine) close() error {
	if e.cameraControl != nil {
		e.cameraControl.Release()
		e.cameraControl = nil
	}
	if e.procAmp != nil {
		e.procAmp.Release()
		e.procAmp = nil
	}
	if e.sink != nil {
		e.sink.Release()
		e.sink = nil
	}
	if e.engine != nil {
		e.engine.Release()
		e.engine = nil
	}
	if e.events != nil {
		e.events.Release()
		e.events = nil
	}
	if e.samples != nil {
		e.samples.Release()
		e.samples = nil
	}
	if e.source != nil {
		e.source.Shutdown()
		e.source.Release()
		e.source = nil
	}
	if e.activate != nil {
		e.activate.ShutdownObject()
		e.activate.Release()
		e.activate = nil
	}
	if e.started {
		e.started = false
		mfShutdown()
	}
	return nil
}

// mfSample holds a reference on a sample delivered to the preview callback.
type mfSample struct {
	s *IMFSample
}

func (m *mfSample) release() {
	if m.s != nil {
		m.s.Release()
		m.s = nil
	}
}

// copyFrame copies the sample's RGB32 pixels into a packed, top-down buffer.
func (m *mfSample) copyFrame(width, height uint32) (*Frame, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	var ts time.Duration
	if t, err := m.s.GetSampleTime(); err == nil {
		ts = time.Duration(t) * 100
	}

	buf, err := m.s.ConvertToContiguousBuffer()
	if err != nil {
		return nil, err
	}
	defer buf.Release()

	rowBytes := pixfmt.RowBytes(pixfmt.FormatRGB32, int(width))
	out := make([]byte, rowBytes*int(height))

	if buf2d, err := buf.As2DBuffer(); err == nil {
		defer buf2d.Release()
		scan0, pitch, err := buf2d.Lock2D()
		if err != nil {
			return nil, err
		}
		defer buf2d.Unlock2D()
		if err := copyRows(out, scan0, int(pitch), rowBytes, int(height)); err != nil {
			return nil, err
		}
		return NewFrame(pixfmt.FormatRGB32, width, height, ts, out), nil
	}

	data, err := buf.Lock()
	if err != nil {
		return nil, err
	}
	defer buf.Unlock()
	if err := copyStridedRows(out, data, rowBytes, int(height)); err != nil {
		return nil, err
	}
	return NewFrame(pixfmt.FormatRGB32, width, height, ts, out), nil
}
