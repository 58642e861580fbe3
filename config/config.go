// Package config - Loads run configuration from a file, the environment and defaults.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/overlay"
	"github.com/nvr-ai/go-motion/source"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. MOTION_MOTION_MIN_REGION_AREA.
const EnvPrefix = "MOTION"

// Source selects where frames come from. At most one of Video and Images may be set;
// with neither, the camera Device is used.
type Source struct {
	Device int    `mapstructure:"device" json:"device"`
	Video  string `mapstructure:"video" json:"video"`
	Images string `mapstructure:"images" json:"images"`
}

// Display controls the preview windows.
type Display struct {
	ShowWindow bool `mapstructure:"show_window" json:"show_window"`
	// Debug also shows the mask and difference windows.
	Debug bool          `mapstructure:"debug" json:"debug"`
	Style overlay.Style `mapstructure:"style" json:"style"`
}

// HTTP controls the status API. An empty Addr disables it.
type HTTP struct {
	Addr string `mapstructure:"addr" json:"addr"`
}

// Profile controls the runtime profiler.
type Profile struct {
	Enabled        bool          `mapstructure:"enabled" json:"enabled"`
	ReportInterval time.Duration `mapstructure:"report_interval" json:"report_interval"`
}

// Config is the complete configuration of a run.
type Config struct {
	Motion motion.Config `mapstructure:"motion" json:"motion"`
	// Rebaseline adopts a frame with a new geometry as the background instead of failing.
	Rebaseline bool    `mapstructure:"rebaseline" json:"rebaseline"`
	Source     Source  `mapstructure:"source" json:"source"`
	Display    Display `mapstructure:"display" json:"display"`
	HTTP       HTTP    `mapstructure:"http" json:"http"`
	Profile    Profile `mapstructure:"profile" json:"profile"`
	Verbose    bool    `mapstructure:"verbose" json:"verbose"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Motion:  motion.DefaultConfig(),
		Display: Display{Style: overlay.DefaultStyle()},
		Profile: Profile{ReportInterval: 2 * time.Second},
	}
}

// setDefaults registers every key with viper so environment variables can
// override keys that are absent from the file.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("motion.target_width", cfg.Motion.TargetWidth)
	v.SetDefault("motion.diff_threshold", cfg.Motion.DiffThreshold)
	v.SetDefault("motion.dilation_iterations", cfg.Motion.DilationIterations)
	v.SetDefault("motion.min_region_area", cfg.Motion.MinRegionArea)
	v.SetDefault("rebaseline", cfg.Rebaseline)
	v.SetDefault("source.device", cfg.Source.Device)
	v.SetDefault("source.video", cfg.Source.Video)
	v.SetDefault("source.images", cfg.Source.Images)
	v.SetDefault("display.show_window", cfg.Display.ShowWindow)
	v.SetDefault("display.debug", cfg.Display.Debug)
	v.SetDefault("display.style.box_color", cfg.Display.Style.BoxColor)
	v.SetDefault("display.style.thickness", cfg.Display.Style.Thickness)
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("profile.enabled", cfg.Profile.Enabled)
	v.SetDefault("profile.report_interval", cfg.Profile.ReportInterval)
	v.SetDefault("verbose", cfg.Verbose)
}

// Load reads the configuration.
//
// Values come from, in increasing priority: Default(), the file at path (any
// format viper understands, skipped when path is empty) and MOTION_*
// environment variables, where dots in a key become underscores.
//
// Arguments:
//   - path: The config file, or "" for defaults and environment only.
//
// Returns:
//   - Config: The validated configuration.
//   - error: An error if the file cannot be read or a value is invalid.
//
// @example
// cfg, err := config.Load("motion.yaml")
// detector, err := motion.New(cfg.Motion)
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Motion.Validate(); err != nil {
		return errors.Wrap(err, "motion")
	}
	if c.Source.Video != "" && c.Source.Images != "" {
		return errors.New("source: video and images cannot both be set")
	}
	if c.Source.Video == "" && c.Source.Images == "" && c.Source.Device < 0 {
		return errors.Errorf("source: device must not be negative, got %d", c.Source.Device)
	}
	if err := c.Display.Style.Validate(); err != nil {
		return errors.Wrap(err, "display")
	}
	if c.Profile.Enabled && c.Profile.ReportInterval <= 0 {
		return errors.Errorf("profile: report interval must be positive, got %v", c.Profile.ReportInterval)
	}
	return nil
}

// SourceKind names the configured frame source.
type SourceKind int

// Source kinds.
const (
	SourceCamera SourceKind = iota
	SourceVideo
	SourceImages
)

// Kind reports which source the configuration selects.
func (s Source) Kind() SourceKind {
	switch {
	case s.Video != "":
		return SourceVideo
	case s.Images != "":
		return SourceImages
	default:
		return SourceCamera
	}
}

// Describe returns a short human readable description of the source.
func (s Source) Describe() string {
	switch s.Kind() {
	case SourceVideo:
		return "Video: " + s.Video
	case SourceImages:
		return "Images: " + s.Images
	default:
		return fmt.Sprintf("Camera (Device %d)", s.Device)
	}
}

// Open opens the configured source. Camera and video sources need a build
// with the withcv tag.
func (s Source) Open() (source.Source, error) {
	switch s.Kind() {
	case SourceImages:
		dir, err := source.OpenDirectory(s.Images)
		if err != nil {
			return nil, err
		}
		return dir, nil
	case SourceVideo:
		capture, err := source.OpenCapture(s.Video)
		if err != nil {
			return nil, err
		}
		return capture, nil
	default:
		capture, err := source.OpenCapture(strconv.Itoa(s.Device))
		if err != nil {
			return nil, err
		}
		return capture, nil
	}
}
