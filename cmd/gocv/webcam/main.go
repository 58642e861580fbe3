//go:build withcv
// +build withcv

// Command webcam previews motion regions on a camera feed, drawing directly on
// the OpenCV frame.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/nvr-ai/go-motion/motion"
	"gocv.io/x/gocv"
)

func main() {
	deviceID := flag.Int("device", 0, "Camera device id")
	minArea := flag.Int("min-area", motion.DefaultConfig().MinRegionArea, "Minimum region area")
	flag.Parse()

	// open webcam
	webcam, err := gocv.OpenVideoCapture(*deviceID)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer webcam.Close()

	// open display window
	window := gocv.NewWindow("Security Feed")
	defer window.Close()

	// prepare image matrix
	img := gocv.NewMat()
	defer img.Close()

	cfg := motion.DefaultConfig()
	cfg.MinRegionArea = *minArea
	detector, err := motion.New(cfg, motion.WithMismatchPolicy(motion.MismatchRebaseline))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer detector.Close()

	red := color.RGBA{255, 51, 51, 0}

	// FPS tracking variables
	fps := 0.0
	frameCount := 0
	lastTime := time.Now()

	fmt.Printf("start reading camera device: %v\n", *deviceID)
	for {
		if ok := webcam.Read(&img); !ok {
			fmt.Printf("cannot read device %v\n", *deviceID)
			return
		}
		if img.Empty() {
			continue
		}

		// Update FPS calculation
		frameCount++
		if elapsed := time.Since(lastTime).Seconds(); elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			lastTime = time.Now()
		}

		frame, err := img.ToImage()
		if err != nil {
			continue
		}
		result, err := detector.Process(frame)
		if err != nil {
			fmt.Printf("skipping frame: %v\n", err)
			continue
		}

		// Regions are in normalized coordinates; scale them back to the camera frame.
		scale := float64(img.Cols()) / float64(cfg.TargetWidth)
		for _, region := range result.Regions {
			r := region.Box.ToRect()
			gocv.Rectangle(&img, image.Rect(
				int(float64(r.Min.X)*scale), int(float64(r.Min.Y)*scale),
				int(float64(r.Max.X)*scale), int(float64(r.Max.Y)*scale),
			), red, 5)
		}
		status := fmt.Sprintf("Status: %s | FPS: %.1f", result.Status, fps)
		gocv.PutText(&img, status, image.Pt(10, 20), gocv.FontHersheySimplex, 0.5, red, 2)

		// show the image in the window, and wait 1 millisecond
		window.IMShow(img)
		if window.WaitKey(1)&0xff == 'q' {
			return
		}
	}
}
