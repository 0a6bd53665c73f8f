package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrPluginNotFound is returned when a requested plugin cannot be found.
var ErrPluginNotFound = errors.New("plugin not found")

const manifestName = "plugin.json"

// watchDebounce coalesces bursts of filesystem events into one rescan.
const watchDebounce = 200 * time.Millisecond

// Manager discovers plugins under a directory and looks them up by name or
// by action.
type Manager struct {
	pluginDir string
	plugins   map[string]*Plugin
	mu        sync.RWMutex
}

// NewManager creates a new plugin Manager with the given plugin directory.
func NewManager(pluginDir string) *Manager {
	return &Manager{
		pluginDir: pluginDir,
		plugins:   make(map[string]*Plugin),
	}
}

// Discover scans the plugin directory for plugin.json files and replaces the
// current plugin set. Each subdirectory is expected to hold one plugin.
func (m *Manager) Discover() error {
	plugins, err := scan(m.pluginDir)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.plugins = plugins
	m.mu.Unlock()
	return nil
}

func scan(dir string) (map[string]*Plugin, error) {
	plugins := make(map[string]*Plugin)

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return plugins, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return plugins, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginPath := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(filepath.Join(pluginPath, manifestName))
		if err != nil {
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			log.Printf("plugin: skipping %s: invalid manifest: %v", entry.Name(), err)
			continue
		}
		if manifest.Name == "" || manifest.Executable == "" {
			log.Printf("plugin: skipping %s: manifest needs name and executable", entry.Name())
			continue
		}

		plugins[manifest.Name] = &Plugin{
			Manifest:   manifest,
			Path:       pluginPath,
			Executable: filepath.Join(pluginPath, manifest.Executable),
		}
	}

	return plugins, nil
}

// Get returns a plugin by name.
// Returns ErrPluginNotFound if the plugin does not exist.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugin, ok := m.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound
	}

	return plugin, nil
}

// FindByAction returns the first plugin, by name, that declares action.
func (m *Manager) FindByAction(action string) (*Plugin, error) {
	for _, p := range m.List() {
		if p.Manifest.Supports(action) {
			return p, nil
		}
	}
	return nil, ErrPluginNotFound
}

// List returns all discovered plugins sorted by name.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	plugins := make([]*Plugin, 0, len(m.plugins))
	for _, plugin := range m.plugins {
		plugins = append(plugins, plugin)
	}
	m.mu.RUnlock()

	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Manifest.Name < plugins[j].Manifest.Name
	})
	return plugins
}

// PluginDir returns the plugin directory path.
func (m *Manager) PluginDir() string {
	return m.pluginDir
}

// Watch rediscovers plugins whenever the plugin directory or one of its
// plugin subdirectories changes. It blocks until ctx is done.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(m.pluginDir); err != nil {
		return err
	}
	m.watchSubdirs(watcher)

	var rescan <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					watcher.Add(event.Name)
				}
			}
			rescan = time.After(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("plugin: watch error: %v", err)

		case <-rescan:
			rescan = nil
			if err := m.Discover(); err != nil {
				log.Printf("plugin: rediscovery failed: %v", err)
				continue
			}
			log.Printf("plugin: %d plugins loaded", len(m.List()))
		}
	}
}

func (m *Manager) watchSubdirs(watcher *fsnotify.Watcher) {
	entries, err := os.ReadDir(m.pluginDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			watcher.Add(filepath.Join(m.pluginDir, entry.Name()))
		}
	}
}
