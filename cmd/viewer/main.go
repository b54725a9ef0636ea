package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	mfcam "github.com/kevmo314/go-mfcam"
)

func main() {
	runtime.LockOSThread() // SDL requires main thread

	device := flag.Int("device", 0, "device index")
	name := flag.String("name", "", "device friendly name or symbolic link, overrides -device")
	flag.Parse()

	cfg := mfcam.DefaultConfig()
	cfg.DeviceIndex = *device
	cfg.DeviceName = *name

	cam, err := mfcam.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open camera: %v", err)
	}
	defer cam.Close()

	if err := cam.Start(); err != nil {
		log.Fatalf("Failed to start preview: %v", err)
	}

	// The first frame fixes the window and texture size.
	first, err := cam.WaitForFrame()
	if err != nil {
		log.Fatalf("Failed to read first frame: %v", err)
	}
	width, height := first.Size()

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		log.Fatalf("Failed to init SDL: %v", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow(cam.Device().String(),
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(width), int32(height), sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer renderer.Destroy()

	// RGB32 is B, G, R, X in memory, which SDL calls RGB888 on little-endian hosts.
	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB888,
		sdl.TEXTUREACCESS_STREAMING, int32(width), int32(height))
	if err != nil {
		log.Fatalf("Failed to create texture: %v", err)
	}
	defer texture.Destroy()

	var mu sync.Mutex
	latestFrame := first
	done := make(chan struct{})

	// Reader goroutine
	go func() {
		defer close(done)
		var lastLog time.Time
		var frameCount int
		for {
			frame, err := cam.WaitForFrame()
			if errors.Is(err, mfcam.ErrClosed) || errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				return
			}
			if w, h := frame.Size(); w != width || h != height {
				log.Printf("Dropping %dx%d frame, window is %dx%d", w, h, width, height)
				continue
			}
			mu.Lock()
			latestFrame = frame
			mu.Unlock()

			frameCount++
			if time.Since(lastLog) >= time.Second {
				log.Printf("Capture FPS: %d", frameCount)
				frameCount = 0
				lastLog = time.Now()
			}
		}
	}()

	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event.(type) {
			case *sdl.QuitEvent:
				running = false
			}
		}
		select {
		case <-done:
			running = false
		default:
		}

		mu.Lock()
		frame := latestFrame
		latestFrame = nil
		mu.Unlock()

		if frame != nil {
			pix := frame.Data().Uint8()
			texture.Update(nil, unsafe.Pointer(&pix[0]), int(width)*4)
		}

		renderer.Clear()
		renderer.Copy(texture, nil, nil)
		renderer.Present()

		sdl.Delay(1)
	}

	if err := cam.Stop(); err != nil {
		log.Printf("Failed to stop preview: %v", err)
	}
}
