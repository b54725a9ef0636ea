package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/time/rate"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rivo/tview"

	mfcam "github.com/kevmo314/go-mfcam"
	"github.com/kevmo314/go-mfcam/pkg/sharpness"
)

type Display struct {
	frame atomic.Value
}

func (g *Display) Update() error {
	return nil
}

func (g *Display) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.frame.Load().(*ebiten.Image), &ebiten.DrawImageOptions{})
}

func (g *Display) Layout(outsideWidth, outsideHeight int) (int, int) {
	frame := g.frame.Load().(*ebiten.Image)
	return frame.Bounds().Dx(), frame.Bounds().Dy()
}

// session is the camera currently being previewed.
type session struct {
	mu     sync.Mutex
	cam    *mfcam.Camera
	active atomic.Uint32
}

func (s *session) swap(cam *mfcam.Camera) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	track := s.active.Add(1)
	if s.cam != nil {
		s.cam.Close()
	}
	s.cam = cam
	return track
}

func main() {
	render := flag.Bool("render", false, "render the frames to screen (higher performance but requires a display)")
	previewRate := flag.Duration("preview-interval", 50*time.Millisecond, "minimum time between terminal preview updates")
	verbose := flag.Bool("v", false, "log capture engine events")

	flag.Parse()

	devices, err := mfcam.ListDevices()
	if err != nil {
		panic(err)
	}

	app := tview.NewApplication()

	deviceList := tview.NewList()
	deviceList.SetBorder(true).SetTitle("Devices")

	controlList := tview.NewList()
	controlList.SetBorder(true).SetTitle("Controls")

	stats := tview.NewTextView().SetDynamicColors(true)
	stats.SetBorder(true).SetTitle("Stream")

	secondColumn := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(controlList, 0, 3, false).
		AddItem(stats, 7, 0, false)

	preview := tview.NewImage()
	preview.SetColors(256).SetDithering(tview.DitheringNone).SetBorder(true).SetTitle("Preview")

	logText := tview.NewTextView()
	logText.SetMaxLines(10).SetBorder(true).SetTitle("Log")

	log.SetOutput(logText)
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logText, &slog.HandlerOptions{Level: level}))

	s := &session{}
	defer s.swap(nil)

	var refreshControls func(cam *mfcam.Camera)
	refreshControls = func(cam *mfcam.Camera) {
		controlList.Clear()
		for _, ctl := range mfcam.Controls() {
			r, err := cam.ControlRange(ctl)
			if err != nil {
				continue
			}
			v, err := cam.GetControl(ctl)
			if err != nil {
				log.Printf("error reading %s: %s", ctl, err)
				continue
			}
			controlList.AddItem(ctl.String(), controlSubtitle(r, v), 0, func() {
				input := tview.NewInputField()
				label := fmt.Sprintf("Enter %s (%d-%d", ctl, r.Min, r.Max)
				if r.AutoSupported {
					label += " or auto"
				}
				input.SetLabel(label + "): ").
					SetFieldWidth(10).
					SetDoneFunc(func(key tcell.Key) {
						defer func() {
							secondColumn.RemoveItem(input)
							app.SetFocus(controlList)
						}()
						if key != tcell.KeyEnter {
							return
						}
						value, err := parseControlValue(input.GetText(), r)
						if err != nil {
							log.Printf("failed parsing value %s", err)
							return
						}
						if err := cam.SetControl(ctl, value); err != nil {
							log.Printf("control request failed %s", err)
							return
						}
						refreshControls(cam)
					})
				secondColumn.AddItem(input, 1, 0, false)
				app.SetFocus(input)
			})
		}
		if controlList.GetItemCount() == 0 {
			controlList.AddItem("No controls exposed", "", 0, nil)
		}
	}

	for _, dev := range devices {
		deviceList.AddItem(dev.FriendlyName, dev.SymbolicLink, 0, func() {
			cfg := mfcam.DefaultConfig()
			cfg.DeviceIndex = dev.Index
			cfg.Logger = logger
			cam, err := mfcam.Open(cfg)
			if err != nil {
				log.Printf("error opening camera: %s", err)
				return
			}
			if err := cam.Start(); err != nil {
				log.Printf("error starting preview: %s", err)
				cam.Close()
				return
			}
			track := s.swap(cam)
			refreshControls(cam)

			var g *Display
			if *render {
				g = &Display{}
			}
			limiter := rate.NewLimiter(rate.Every(*previewRate), 1)
			go func() {
				var frames int
				t0 := time.Now()
				for s.active.Load() == track {
					frame, err := cam.WaitForFrame()
					if errors.Is(err, mfcam.ErrClosed) || errors.Is(err, io.EOF) {
						return
					}
					if err != nil {
						log.Printf("error reading frame: %s", err)
						return
					}
					frames++
					if !limiter.Allow() {
						continue
					}
					img, err := frame.Image()
					if err != nil {
						log.Printf("error decoding frame: %s", err)
						continue
					}
					fps := float64(frames) / time.Since(t0).Seconds()
					frames, t0 = 0, time.Now()
					score := sharpness.Score(img, sharpness.DefaultSize)
					w, h := frame.Size()

					if g != nil {
						if g.frame.Swap(ebiten.NewImageFromImage(img)) == nil {
							go func() {
								if err := ebiten.RunGame(g); err != nil {
									log.Printf("ebiten error: %s", err)
								}
							}()
						}
					}
					app.QueueUpdateDraw(func() {
						stats.SetText(fmt.Sprintf("Size: %dx%d\nFPS: %.1f\nSharpness: %.3f\nTimestamp: %v",
							w, h, fps, score, frame.Timestamp().Truncate(time.Millisecond)))
						if g == nil {
							pw := 64
							ph := int(h) * pw / int(w)
							preview.SetImage(resize(img, pw, ph))
						}
					})
				}
			}()
			app.SetFocus(controlList)
		})
	}
	if len(devices) == 0 {
		deviceList.AddItem("No cameras found", "", 0, nil)
	}

	// Create the layout.

	flex := tview.NewFlex().
		AddItem(deviceList, 0, 1, true).
		AddItem(secondColumn, 0, 1, false)

	if !*render {
		flex.AddItem(preview, 0, 3, false)
	}

	if err := app.SetRoot(tview.NewFlex().SetDirection(tview.FlexRow).AddItem(flex, 0, 1, true).AddItem(logText, 10, 0, false), true).Run(); err != nil {
		panic(err)
	}
}

func resize(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

func controlSubtitle(r mfcam.ControlRange, v mfcam.ControlValue) string {
	sub := fmt.Sprintf("%d [%d..%d step %d, default %d]", v.Value, r.Min, r.Max, r.Step, r.Default)
	if v.Auto {
		sub += " auto"
	}
	return sub
}

func parseControlValue(text string, r mfcam.ControlRange) (mfcam.ControlValue, error) {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, "auto") {
		if !r.AutoSupported {
			return mfcam.ControlValue{}, errors.New("control has no automatic mode")
		}
		return mfcam.ControlValue{Value: r.Default, Auto: true}, nil
	}
	v, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return mfcam.ControlValue{}, err
	}
	return mfcam.ControlValue{Value: r.Clamp(int32(v))}, nil
}
