// Package config loads the runtime configuration of the mudra command from
// MUDRA_* environment variables and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/app"
)

// Config holds configuration options for the mudra command.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// DataDir holds the database and, unless overridden, plugins and the web
	// dashboard.
	DataDir   string
	PluginDir string
	WebDir    string

	CameraDevice int
	// Camera starts the local camera pipeline at launch.
	Camera bool
	// Tray shows the system tray menu.
	Tray bool

	// Threshold is the action threshold used until one is saved through the
	// settings API. Zero selects action.DefaultThreshold.
	Threshold     float64
	Cooldown      time.Duration
	PluginTimeout time.Duration
	// Retention is how long the recognition log is kept. Zero keeps it
	// forever.
	Retention     time.Duration

	// SessionIdle is how long a remote session may stay silent before it is
	// evicted; SessionSweep is how often that is checked.
	SessionIdle  time.Duration
	SessionSweep time.Duration
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	dataDir := ".mudra"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".mudra")
	}

	return Config{
		Addr:          ":5001",
		DataDir:       dataDir,
		Threshold:     action.DefaultThreshold,
		Cooldown:      app.DefaultCooldown,
		PluginTimeout: app.DefaultPluginTimeout,
		Retention:     30 * 24 * time.Hour,
		SessionIdle:   10 * time.Minute,
		SessionSweep:  time.Minute,
	}
}

// DBPath returns the location of the sqlite database.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}

// Validate checks that the configuration values are usable.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("listen address is required")
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold %v: %w", c.Threshold, app.ErrInvalidThreshold)
	}
	if c.Cooldown < 0 || c.PluginTimeout <= 0 {
		return errors.New("cooldown and plugin timeout must not be negative")
	}
	if c.Retention < 0 {
		return errors.New("retention must not be negative")
	}
	if c.SessionIdle <= 0 || c.SessionSweep <= 0 {
		return errors.New("session idle and sweep intervals must be positive")
	}
	return nil
}

// Load builds a Config from the defaults, then MUDRA_* environment
// variables, then args. Flags win over the environment.
func Load(args []string) (Config, error) {
	cfg := Default()
	if err := cfg.fromEnv(); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("mudra", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory for the database")
	fs.StringVar(&cfg.PluginDir, "plugins", cfg.PluginDir, "plugin directory (default <data>/plugins)")
	fs.StringVar(&cfg.WebDir, "web", cfg.WebDir, "static dashboard directory")
	fs.IntVar(&cfg.CameraDevice, "device", cfg.CameraDevice, "camera device ID")
	fs.BoolVar(&cfg.Camera, "camera", cfg.Camera, "start the local camera pipeline")
	fs.BoolVar(&cfg.Tray, "tray", cfg.Tray, "show the system tray menu")
	fs.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "confidence an action must exceed (0 uses the default)")
	fs.DurationVar(&cfg.Cooldown, "cooldown", cfg.Cooldown, "minimum gap between repeats of one action")
	fs.DurationVar(&cfg.PluginTimeout, "plugin-timeout", cfg.PluginTimeout, "maximum plugin run time")
	fs.DurationVar(&cfg.Retention, "retention", cfg.Retention, "keep the recognition log this long (0 keeps it forever)")
	fs.DurationVar(&cfg.SessionIdle, "session-idle", cfg.SessionIdle, "evict remote sessions idle this long")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.PluginDir == "" {
		cfg.PluginDir = filepath.Join(cfg.DataDir, "plugins")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) fromEnv() error {
	c.Addr = getEnv("MUDRA_ADDR", c.Addr)
	c.DataDir = getEnv("MUDRA_DATA_DIR", c.DataDir)
	c.PluginDir = getEnv("MUDRA_PLUGIN_DIR", c.PluginDir)
	c.WebDir = getEnv("MUDRA_WEB_DIR", c.WebDir)

	var err error
	if c.CameraDevice, err = getEnvInt("MUDRA_CAMERA_DEVICE", c.CameraDevice); err != nil {
		return err
	}
	if c.Camera, err = getEnvBool("MUDRA_CAMERA", c.Camera); err != nil {
		return err
	}
	if c.Tray, err = getEnvBool("MUDRA_TRAY", c.Tray); err != nil {
		return err
	}
	if c.Threshold, err = getEnvFloat("MUDRA_THRESHOLD", c.Threshold); err != nil {
		return err
	}
	if c.Cooldown, err = getEnvDuration("MUDRA_COOLDOWN", c.Cooldown); err != nil {
		return err
	}
	if c.PluginTimeout, err = getEnvDuration("MUDRA_PLUGIN_TIMEOUT", c.PluginTimeout); err != nil {
		return err
	}
	if c.Retention, err = getEnvDuration("MUDRA_RETENTION", c.Retention); err != nil {
		return err
	}
	if c.SessionIdle, err = getEnvDuration("MUDRA_SESSION_IDLE", c.SessionIdle); err != nil {
		return err
	}
	return nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getEnvBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}

func getEnvFloat(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return f, nil
}

func getEnvDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}
