package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/go-motion/api"
	"github.com/nvr-ai/go-motion/config"
	"github.com/nvr-ai/go-motion/controller"
	"github.com/nvr-ai/go-motion/display"
	"github.com/nvr-ai/go-motion/images"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/profiler"
	"github.com/nvr-ai/go-motion/source"
	"github.com/pkg/errors"
)

// cliFlags holds the parsed command line.
type cliFlags struct {
	configPath string
	cfg        config.Config
	set        map[string]bool
}

// parseFlags parses args on top of the defaults.
//
// Only flags that appear in args override the loaded config; see applyFlags.
func parseFlags(args []string, output io.Writer) (*cliFlags, error) {
	f := &cliFlags{cfg: config.Default(), set: make(map[string]bool)}
	cfg := &f.cfg

	fs := flag.NewFlagSet("motion", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&f.configPath, "config", "", "Path to a config file (yaml, json or toml)")
	fs.StringVar(&cfg.Source.Video, "video", "", "Path to a video file (.mp4, .avi, .mov)")
	fs.StringVar(&cfg.Source.Video, "v", "", "Shorthand for --video")
	fs.StringVar(&cfg.Source.Images, "images", "", "Directory of frame images (frame-<n>.jpg, .png, .webp, ...)")
	fs.IntVar(&cfg.Source.Device, "device", cfg.Source.Device, "Camera device id, used when no video or images are given")
	fs.IntVar(&cfg.Motion.MinRegionArea, "min-area", cfg.Motion.MinRegionArea, "Minimum region area")
	fs.IntVar(&cfg.Motion.MinRegionArea, "a", cfg.Motion.MinRegionArea, "Shorthand for --min-area")
	fs.IntVar(&cfg.Motion.TargetWidth, "width", cfg.Motion.TargetWidth, "Width frames are resized to before comparison")
	fs.IntVar(&cfg.Motion.DiffThreshold, "threshold", cfg.Motion.DiffThreshold, "Intensity difference a pixel must exceed to count as changed")
	fs.IntVar(&cfg.Motion.DilationIterations, "dilate", cfg.Motion.DilationIterations, "Number of 3x3 dilation passes")
	fs.BoolVar(&cfg.Rebaseline, "rebaseline", cfg.Rebaseline, "Adopt a frame with a new resolution as the background instead of failing")
	fs.StringVar(&cfg.HTTP.Addr, "http", cfg.HTTP.Addr, "Serve the status API on this address, e.g. :8080")
	fs.BoolVar(&cfg.Display.ShowWindow, "show-window", cfg.Display.ShowWindow, "Show the preview window")
	fs.BoolVar(&cfg.Display.Debug, "debug", cfg.Display.Debug, "Also show the mask and difference windows")
	fs.BoolVar(&cfg.Profile.Enabled, "profile", cfg.Profile.Enabled, "Print periodic runtime reports")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log every frame")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, errors.Errorf("unexpected arguments: %v", fs.Args())
	}

	fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
	return f, nil
}

// applyFlags copies every explicitly set flag onto cfg.
func (f *cliFlags) applyFlags(cfg *config.Config) {
	for name := range f.set {
		switch name {
		case "video", "v":
			cfg.Source.Video = f.cfg.Source.Video
		case "images":
			cfg.Source.Images = f.cfg.Source.Images
		case "device":
			cfg.Source.Device = f.cfg.Source.Device
		case "min-area", "a":
			cfg.Motion.MinRegionArea = f.cfg.Motion.MinRegionArea
		case "width":
			cfg.Motion.TargetWidth = f.cfg.Motion.TargetWidth
		case "threshold":
			cfg.Motion.DiffThreshold = f.cfg.Motion.DiffThreshold
		case "dilate":
			cfg.Motion.DilationIterations = f.cfg.Motion.DilationIterations
		case "rebaseline":
			cfg.Rebaseline = f.cfg.Rebaseline
		case "http":
			cfg.HTTP.Addr = f.cfg.HTTP.Addr
		case "show-window":
			cfg.Display.ShowWindow = f.cfg.Display.ShowWindow
		case "debug":
			cfg.Display.Debug = f.cfg.Display.Debug
		case "profile":
			cfg.Profile.Enabled = f.cfg.Profile.Enabled
		case "verbose":
			cfg.Verbose = f.cfg.Verbose
		}
	}
}

// loadConfig merges the config file, the environment and the command line.
func loadConfig(args []string, output io.Writer) (config.Config, error) {
	f, err := parseFlags(args, output)
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	f.applyFlags(&cfg)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if cfg.Source.Kind() == config.SourceVideo {
		if err := source.ValidateVideoFile(cfg.Source.Video); err != nil {
			return config.Config{}, errors.Wrap(err, "video validation error")
		}
	}
	return cfg, nil
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)

	cfg, err := loadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

// run wires the source, detector and consumers together and processes the stream.
func run(ctx context.Context, cfg config.Config) error {
	src, err := cfg.Source.Open()
	if err != nil {
		return errors.Wrapf(err, "open %s", cfg.Source.Describe())
	}
	defer src.Close()

	runID := uuid.New()
	stats := motion.NewStats()

	opts := []motion.Option{}
	if cfg.Rebaseline {
		opts = append(opts, motion.WithMismatchPolicy(motion.MismatchRebaseline))
	}

	var prof *profiler.RuntimeProfiler
	if cfg.Profile.Enabled {
		prof = profiler.NewRuntimeProfiler(profiler.ProfilingOptions{ReportInterval: cfg.Profile.ReportInterval})
		prof.AddMetricsCollector(stats)
		opts = append(opts, motion.WithStageTimer(prof))
	}

	detector, err := motion.New(cfg.Motion, opts...)
	if err != nil {
		return err
	}
	defer detector.Close()

	consumers := []controller.Consumer{controller.NewLogConsumer(nil, cfg.Verbose)}

	var server *api.Server
	if cfg.HTTP.Addr != "" {
		server = api.NewServer(runID, stats, cfg.Motion.TargetWidth, cfg.Display.Style)
		consumers = append(consumers, server)
	}

	if cfg.Display.ShowWindow {
		window, err := display.Open(display.Options{
			Width: cfg.Motion.TargetWidth,
			Style: cfg.Display.Style,
			Debug: cfg.Display.Debug,
		})
		if err != nil {
			return err
		}
		defer window.Close()
		consumers = append(consumers, window)
	}

	printBanner(cfg, runID)

	if server != nil {
		go func() {
			if err := server.ListenAndServe(cfg.HTTP.Addr); err != nil {
				log.Printf("⚠️  Status API stopped: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Printf("⚠️  Status API shutdown: %v", err)
			}
		}()
	}

	if prof != nil {
		prof.Start()
		defer prof.Stop()
	}

	runner := controller.NewRunner(src, detector, controller.Options{
		ID:      runID,
		Stats:   stats,
		Verbose: cfg.Verbose,
	}, consumers...)

	started := time.Now()
	err = runner.Run(ctx)
	printSummary(stats.Snapshot(), time.Since(started))
	return err
}

func printBanner(cfg config.Config, runID uuid.UUID) {
	fmt.Printf("\n🚀 Motion Detection System Started\n")
	fmt.Printf("=====================================\n")
	fmt.Printf("🆔 Run: %s\n", runID)
	fmt.Printf("⚙️  Configuration:\n")
	fmt.Printf("   🎥 Input: %s\n", cfg.Source.Describe())
	fmt.Printf("   📐 Target width: %d\n", cfg.Motion.TargetWidth)
	fmt.Printf("   🎚️  Difference threshold: %d\n", cfg.Motion.DiffThreshold)
	fmt.Printf("   🔲 Dilation iterations: %d\n", cfg.Motion.DilationIterations)
	fmt.Printf("   📏 Minimum region area: %d\n", cfg.Motion.MinRegionArea)
	fmt.Printf("   🧮 Pixel backend: %s\n", images.Backend)
	fmt.Printf("   🔁 Re-baseline on resolution change: %t\n", cfg.Rebaseline)
	fmt.Printf("   🖼️  Show window: %t\n", cfg.Display.ShowWindow)
	if cfg.HTTP.Addr != "" {
		fmt.Printf("   🌐 Status API: %s\n", cfg.HTTP.Addr)
	}
	if cfg.Profile.Enabled {
		fmt.Printf("   📈 Profiling: ✅ Enabled (every %v)\n", cfg.Profile.ReportInterval)
	} else {
		fmt.Printf("   📈 Profiling: ❌ Disabled\n")
	}
	fmt.Printf("=====================================\n\n")
}

func printSummary(snap motion.StatsSnapshot, elapsed time.Duration) {
	fmt.Printf("\n📊 Run Summary\n")
	fmt.Printf("=====================================\n")
	fmt.Printf("   ⏱️  Duration: %v\n", elapsed.Truncate(time.Millisecond))
	fmt.Printf("   🎞️  Frames: %d (skipped: %d)\n", snap.Frames, snap.Skipped)
	fmt.Printf("   🔍 Occupied frames: %d\n", snap.Occupied)
	fmt.Printf("   🔀 Status changes: %d\n", snap.Transitions)
	if snap.Rebaselines > 0 {
		fmt.Printf("   🔁 Re-baselines: %d\n", snap.Rebaselines)
	}
	fmt.Printf("=====================================\n")
}
