package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/sync/errgroup"

	mfcam "github.com/kevmo314/go-mfcam"
)

type encoder func(w io.Writer, img image.Image) error

var encoders = map[string]encoder{
	"png": png.Encode,
	"jpg": func(w io.Writer, img image.Image) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	},
	"bmp": bmp.Encode,
}

func main() {
	device := flag.Int("device", 0, "device index")
	name := flag.String("name", "", "device friendly name or symbolic link, overrides -device")
	count := flag.Int("n", 5, "number of frames to capture")
	skip := flag.Int("skip", 3, "frames to discard while exposure settles")
	format := flag.String("format", "jpg", "output format: png, jpg or bmp")
	out := flag.String("out", ".", "output directory")
	workers := flag.Int("workers", 4, "parallel encoders")
	timeout := flag.Duration("timeout", 10*time.Second, "per-frame timeout")
	flag.Parse()

	encode, ok := encoders[*format]
	if !ok {
		log.Fatalf("Unknown format %q", *format)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	cfg := mfcam.DefaultConfig()
	cfg.DeviceIndex = *device
	cfg.DeviceName = *name

	cam, err := mfcam.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open camera: %v", err)
	}
	defer cam.Close()
	fmt.Printf("Opened %s\n", cam.Device())

	if err := cam.Start(); err != nil {
		log.Fatalf("Failed to start preview: %v", err)
	}
	defer cam.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)

	fmt.Println("Capturing frames...")
	for i := 0; i < *skip+*count; i++ {
		fctx, cancel := context.WithTimeout(gctx, *timeout)
		frame, err := cam.WaitForFrameContext(fctx)
		cancel()
		if err != nil {
			log.Printf("Error reading frame %d: %v", i+1, err)
			break
		}
		if i < *skip {
			continue
		}

		n := i - *skip + 1
		g.Go(func() error {
			img, err := frame.Image()
			if err != nil {
				return fmt.Errorf("frame %d: %w", n, err)
			}
			filename := filepath.Join(*out, fmt.Sprintf("frame_%d.%s", n, *format))
			file, err := os.Create(filename)
			if err != nil {
				return err
			}
			defer file.Close()
			if err := encode(file, img); err != nil {
				return fmt.Errorf("encode %s: %w", filename, err)
			}
			w, h := frame.Size()
			fmt.Printf("Saved %s (%dx%d, t=%v)\n", filename, w, h, frame.Timestamp())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("Failed to save frames: %v", err)
	}
	fmt.Println("\nDone!")
}
