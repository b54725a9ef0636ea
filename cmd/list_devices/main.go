package main

import (
	"errors"
	"fmt"
	"log"

	mfcam "github.com/kevmo314/go-mfcam"
)

func main() {
	fmt.Println("Enumerating cameras via Media Foundation...")

	devices, err := mfcam.ListDevices()
	if errors.Is(err, mfcam.ErrUnsupported) {
		log.Fatal("Media Foundation capture is only available on Windows")
	}
	if err != nil {
		log.Fatalf("Failed to enumerate devices: %v", err)
	}

	if len(devices) == 0 {
		fmt.Println("No cameras found")
		return
	}

	fmt.Printf("Found %d camera(s):\n\n", len(devices))
	for _, dev := range devices {
		fmt.Printf("%d: %s\n", dev.Index, dev.FriendlyName)
		fmt.Printf("   Path: %s\n", dev.SymbolicLink)
	}
}
