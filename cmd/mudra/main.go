package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

var version = "dev"

const shutdownTimeout = 5 * time.Second

func main() {
	log.Println("Mudra - Hand Gesture Recognition")

	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	appCfg := app.DefaultConfig()
	appCfg.Store = st
	appCfg.PluginDir = cfg.PluginDir
	appCfg.Camera.DeviceID = cfg.CameraDevice
	appCfg.Threshold = cfg.Threshold
	appCfg.Cooldown = cfg.Cooldown
	appCfg.PluginTimeout = cfg.PluginTimeout

	a := app.New(appCfg)
	if err := a.LoadSettings(); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}
	if err := a.LoadBindings(); err != nil {
		log.Printf("Failed to load bindings: %v", err)
	}
	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := a.WatchPlugins(ctx); err != nil {
			log.Printf("Plugin watcher stopped: %v", err)
		}
	}()
	go a.Sweep(ctx, cfg.SessionSweep, cfg.SessionIdle, cfg.Retention)

	if cfg.Camera {
		a.SetEnabled(true)
	}
	if a.IsEnabled() {
		startPipeline(a)
	}

	webDir := cfg.WebDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		log.Printf("Serving static files from: %s", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		App:       a,
		Store:     st,
		Version:   version,
	})

	go func() {
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Printf("Server failed: %v", err)
			stop()
		}
	}()

	if cfg.Tray {
		runTray(ctx, stop, a, dashboardURL(cfg.Addr))
	} else {
		<-ctx.Done()
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	a.Stop()
}

// runTray shows the tray menu until ctx is done or the user quits. It must
// run on the main goroutine.
func runTray(ctx context.Context, stop context.CancelFunc, a *app.App, url string) {
	t := tray.New(a.IsEnabled())
	t.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
		if enabled {
			startPipeline(a)
		}
	})
	t.OnDashboard(func() {
		if err := openBrowser(url); err != nil {
			log.Printf("Failed to open dashboard: %v", err)
		}
	})
	t.OnQuit(stop)

	unsubscribe := a.Subscribe(func(ev app.Event) {
		if ev.Gesture != gesture.None {
			t.SetLastGesture(string(ev.Gesture), string(ev.Action))
		}
	})
	defer unsubscribe()

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func startPipeline(a *app.App) {
	if err := a.Start(); err != nil {
		log.Printf("Camera pipeline not started: %v", err)
	}
}

// dashboardURL turns a listen address into a browsable local URL.
func dashboardURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://localhost" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
