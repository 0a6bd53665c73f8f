// Package app wires camera capture, hand detection, gesture recognition and
// plugin actions into the running application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
	"gocv.io/x/gocv"
)

// Defaults for Config fields left zero.
const (
	// DefaultCooldown is the minimum gap between two firings of the same
	// action on one stream.
	DefaultCooldown = time.Second
	// DefaultPluginTimeout bounds a single plugin execution.
	DefaultPluginTimeout = 5 * time.Second
)

var (
	// ErrNoDetector is returned when frame recognition is requested but no
	// hand detector could be started.
	ErrNoDetector = errors.New("hand detector not available")
	// ErrInvalidThreshold is returned for thresholds outside [0, 1].
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")
)

// Config holds configuration options for the application.
type Config struct {
	Store         *store.Store
	PluginDir     string
	Camera        capture.Config
	Detector      detector.Config
	// Threshold is the initial action threshold. Zero selects
	// action.DefaultThreshold; an exact zero is set with SetThreshold.
	Threshold     float64
	Cooldown      time.Duration
	PluginTimeout time.Duration

	// HandDetector replaces the MediaPipe detector when set.
	HandDetector detector.Detector
	// Source replaces the camera built from Camera when set.
	Source capture.Camera
}

// DefaultConfig returns a Config with default camera, detector and
// threshold settings.
func DefaultConfig() Config {
	return Config{
		Camera:        capture.DefaultConfig(),
		Detector:      detector.DefaultConfig(),
		Threshold:     action.DefaultThreshold,
		Cooldown:      DefaultCooldown,
		PluginTimeout: DefaultPluginTimeout,
	}
}

// Event is the outcome of recognizing one frame on one stream.
type Event struct {
	SessionID     string          `json:"session_id,omitempty"`
	Gesture       gesture.Gesture `json:"gesture"`
	Confidence    float64         `json:"confidence"`
	Action        action.Action   `json:"action,omitempty"`
	HandsDetected int             `json:"hands_detected"`
	Handedness    string          `json:"handedness,omitempty"`
	// Triggered is set when Action passed the cooldown and was recorded.
	Triggered bool      `json:"triggered"`
	Time      time.Time `json:"time"`
}

// binding is the dispatch target for a gesture loaded from the store.
type binding struct {
	pluginName string
	config     []byte
}

// App is the main application that orchestrates gesture detection and action execution.
type App struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	local      *gesture.Session
	localMu    sync.Mutex
	sessions   *session.Registry
	mapper     *action.Mapper
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	mu        sync.RWMutex
	enabled   bool
	threshold float64
	bindings  map[gesture.Gesture]binding
	lastFired map[string]time.Time
	last      Event
	hasLast   bool
	frame     gocv.Mat
	hasFrame  bool

	subMu  sync.RWMutex
	subs   map[int]func(Event)
	nextID int

	stopCh chan struct{}
	doneCh chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.Threshold <= 0 {
		config.Threshold = action.DefaultThreshold
	}
	if config.Cooldown <= 0 {
		config.Cooldown = DefaultCooldown
	}
	if config.PluginTimeout <= 0 {
		config.PluginTimeout = DefaultPluginTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		config:     config,
		camera:     config.Source,
		local:      gesture.NewSession(),
		sessions:   session.NewRegistry(),
		mapper:     action.NewMapper(),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(config.PluginTimeout),
		threshold:  config.Threshold,
		bindings:   make(map[gesture.Gesture]binding),
		lastFired:  make(map[string]time.Time),
		subs:       make(map[int]func(Event)),
		ctx:        ctx,
		cancel:     cancel,
		now:        time.Now,
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(config.Camera)
	}

	if config.HandDetector != nil {
		a.detector = config.HandDetector
	} else if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), frame recognition disabled", err)
	}

	return a
}

// SetEnabled enables or disables the local camera pipeline. The choice is
// persisted when a store is configured.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if a.config.Store != nil {
		value := "false"
		if enabled {
			value = "true"
		}
		if err := a.config.Store.Settings().Set(store.SettingEnabled, value); err != nil {
			log.Printf("Failed to persist enabled setting: %v", err)
		}
	}
}

// IsEnabled returns whether the local camera pipeline is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Threshold returns the confidence an action needs to exceed.
func (a *App) Threshold() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.threshold
}

// SetThreshold changes the action confidence threshold and persists it when
// a store is configured.
func (a *App) SetThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return ErrInvalidThreshold
	}

	a.mu.Lock()
	a.threshold = threshold
	a.mu.Unlock()

	if a.config.Store != nil {
		return a.config.Store.Settings().SetFloat(store.SettingThreshold, threshold)
	}
	return nil
}

// LoadSettings restores the threshold and enabled flag from the store.
func (a *App) LoadSettings() error {
	if a.config.Store == nil {
		return nil
	}

	settings := a.config.Store.Settings()
	threshold, err := settings.GetFloat(store.SettingThreshold, a.config.Threshold)
	if err != nil {
		return err
	}

	enabled := false
	switch v, err := settings.Get(store.SettingEnabled); {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return err
	default:
		enabled = v == "true"
	}

	a.mu.Lock()
	a.threshold = threshold
	a.enabled = enabled
	a.mu.Unlock()
	return nil
}

// LoadBindings rebuilds the gesture to action table from the defaults and
// the stored bindings. A disabled binding silences its gesture.
func (a *App) LoadBindings() error {
	if a.config.Store == nil {
		return nil
	}

	stored, err := a.config.Store.Bindings().List()
	if err != nil {
		return err
	}

	a.mapper.Reset()
	bindings := make(map[gesture.Gesture]binding)
	for _, b := range stored {
		g, err := gesture.Parse(b.Gesture)
		if err != nil {
			log.Printf("Skipping binding for unknown gesture %q", b.Gesture)
			continue
		}
		if !b.Enabled {
			a.mapper.Unset(g)
			continue
		}
		act, err := action.Parse(b.Action)
		if err != nil {
			log.Printf("Skipping binding %s: %v", b.Gesture, err)
			continue
		}
		a.mapper.Set(g, act)
		bindings[g] = binding{pluginName: b.PluginName, config: b.Config}
	}

	a.mu.Lock()
	a.bindings = bindings
	a.mu.Unlock()

	log.Printf("Loaded %d action bindings from database", len(stored))
	return nil
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// WatchPlugins rediscovers plugins as the plugin directory changes until ctx
// is done.
func (a *App) WatchPlugins(ctx context.Context) error {
	return a.pluginMgr.Watch(ctx)
}

// Subscribe registers fn to receive every recognition event. The returned
// function removes the subscription.
func (a *App) Subscribe(fn func(Event)) func() {
	a.subMu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	a.subMu.Unlock()

	return func() {
		a.subMu.Lock()
		delete(a.subs, id)
		a.subMu.Unlock()
	}
}

func (a *App) publish(ev Event) {
	a.subMu.RLock()
	defer a.subMu.RUnlock()
	for _, fn := range a.subs {
		fn(ev)
	}
}

// LastEvent returns the most recent recognition event, if any.
func (a *App) LastEvent() (Event, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last, a.hasLast
}

// Start opens the camera and begins the local detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline, cancels running plugins and releases
// resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}
	a.cancel()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.mu.Lock()
	if a.hasFrame {
		a.frame.Close()
		a.hasFrame = false
	}
	a.mu.Unlock()

	log.Println("Detection pipeline stopped")
}

// Sweep runs housekeeping every interval until ctx is done: remote sessions
// idle for longer than maxIdle are evicted and, when retention is positive,
// recognitions older than retention are deleted.
func (a *App) Sweep(ctx context.Context, interval, maxIdle, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sweep(maxIdle, retention)
		}
	}
}

func (a *App) sweep(maxIdle, retention time.Duration) {
	if n := a.sessions.Sweep(maxIdle); n > 0 {
		log.Printf("Evicted %d idle sessions", n)
	}

	if retention <= 0 || a.config.Store == nil {
		return
	}
	n, err := a.config.Store.Recognitions().DeleteBefore(a.now().Add(-retention))
	if err != nil {
		log.Printf("Failed to prune recognitions: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Pruned %d recognitions older than %s", n, retention)
	}
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector, or nil when none is available.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Sessions returns the registry of remote recognition streams.
func (a *App) Sessions() *session.Registry {
	return a.sessions
}

// Mapper returns the gesture to action table.
func (a *App) Mapper() *action.Mapper {
	return a.mapper
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Store returns the configured store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}
