// Package mfcam captures frames from a camera through the Windows Media
// Foundation capture engine.
//
// A Camera drives one device through one capture engine. The engine reports
// lifecycle events and delivers samples on its own worker threads; Camera
// queues them and exposes a blocking WaitForFrame call. Frames are 32-bit
// RGB at the device's default resolution.
package mfcam

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// engine is the platform capture engine behind a Camera.
type engine interface {
	prepareSampleSink() error
	startPreview() error
	stopPreview() error
	// outputSize reads the frame size from the preview sink's output type.
	outputSize() (width, height uint32, err error)

	controlRange(ctl Control) (ControlRange, error)
	getControl(ctl Control) (ControlValue, error)
	setControl(ctl Control, v ControlValue) error

	close() error
}

// platform creates capture engines. open starts the engine's asynchronous
// initialization; the Initialized event arrives through b.
type platform interface {
	listDevices() ([]Device, error)
	open(dev Device, b *bridge, log *slog.Logger) (engine, error)
}

type Camera struct {
	log    *slog.Logger
	cfg    Config
	device Device
	bridge *bridge

	mu         sync.RWMutex
	engine     engine
	previewing bool
	closed     *atomic.Bool
}

// NewDefaultCamera opens the first video capture device.
func NewDefaultCamera() (*Camera, error) {
	return Open(DefaultConfig())
}

// Open initializes the capture engine for the device selected by cfg and
// registers the preview sample callback. The preview is not started.
func Open(cfg Config) (*Camera, error) {
	return open(defaultPlatform, cfg)
}

func open(p platform, cfg Config) (*Camera, error) {
	cfg = cfg.withDefaults()

	devices, err := p.listDevices()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	dev, err := selectDevice(devices, cfg)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger.With("device", dev.String())

	b := newBridge(log)
	eng, err := p.open(dev, b, log)
	if err != nil {
		b.close()
		return nil, fmt.Errorf("open %s: %w", dev, err)
	}

	c := &Camera{
		log:    log,
		cfg:    cfg,
		device: dev,
		bridge: b,
		engine: eng,
		closed: &atomic.Bool{},
	}

	if _, err := b.waitEvent(EventInitialized, cfg.InitTimeout); err != nil {
		c.Close()
		return nil, fmt.Errorf("initialize capture engine: %w", err)
	}
	if err := eng.prepareSampleSink(); err != nil {
		c.Close()
		return nil, fmt.Errorf("prepare preview sink: %w", err)
	}
	log.Info("camera ready")
	return c, nil
}

// Device returns the device the camera was opened on.
func (c *Camera) Device() Device {
	return c.device
}

// Start begins the preview stream and waits until the engine confirms it.
func (c *Camera) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return ErrClosed
	}
	if c.previewing {
		return nil
	}
	if err := c.engine.startPreview(); err != nil {
		return err
	}
	c.previewing = true
	_, err := c.bridge.waitEvent(EventPreviewStarted, c.cfg.EventTimeout)
	return err
}

// Stop ends the preview stream and waits until the engine confirms it.
func (c *Camera) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return ErrClosed
	}
	return c.stopLocked()
}

func (c *Camera) stopLocked() error {
	if !c.previewing {
		return nil
	}
	c.previewing = false
	if err := c.engine.stopPreview(); err != nil {
		return err
	}
	_, err := c.bridge.waitEvent(EventPreviewStopped, c.cfg.EventTimeout)
	return err
}

// WaitForFrame blocks until the preview sink delivers the next frame. It
// returns io.EOF when the engine signals the end of the stream and the
// latched engine error after a fatal failure.
func (c *Camera) WaitForFrame() (*Frame, error) {
	return c.WaitForFrameContext(context.Background())
}

// WaitForFrameContext is WaitForFrame with cancellation.
func (c *Camera) WaitForFrameContext(ctx context.Context) (*Frame, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	s, err := c.bridge.nextSample(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, io.EOF
	}
	defer s.release()

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed.Load() {
		return nil, ErrClosed
	}

	width, height, err := c.engine.outputSize()
	if err != nil {
		return nil, fmt.Errorf("read preview media type: %w", err)
	}
	return s.copyFrame(width, height)
}

// ControlRange reports the domain of a device control.
func (c *Camera) ControlRange(ctl Control) (ControlRange, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed.Load() {
		return ControlRange{}, ErrClosed
	}
	return c.engine.controlRange(ctl)
}

// GetControl reads the current value of a device control.
func (c *Camera) GetControl(ctl Control) (ControlValue, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed.Load() {
		return ControlValue{}, ErrClosed
	}
	return c.engine.getControl(ctl)
}

// SetControl writes a device control. With auto set the driver manages the
// value and v.Value is only a hint.
func (c *Camera) SetControl(ctl Control, v ControlValue) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return ErrClosed
	}
	return c.engine.setControl(ctl, v)
}

// Close stops the preview and releases the engine, the media source and the
// callbacks. It is safe to call more than once.
func (c *Camera) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.bridge.close()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.previewing {
		c.previewing = false
		if err := c.engine.stopPreview(); err != nil {
			c.log.Warn("stop preview on close", "err", err)
		}
	}
	return c.engine.close()
}
