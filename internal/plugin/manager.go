package plugin

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrPluginNotFound is returned when a requested plugin cannot be found.
var ErrPluginNotFound = errors.New("plugin not found")

// Manager discovers installed plugins and hands them out by name.
type Manager struct {
	dir string

	mu     sync.RWMutex
	byName map[string]*Plugin
}

// NewManager creates a new plugin Manager with the given plugin directory.
func NewManager(pluginDir string) *Manager {
	return &Manager{
		dir:    pluginDir,
		byName: make(map[string]*Plugin),
	}
}

// Discover rescans the plugin directory and replaces the known plugin set.
// Each installed plugin is a subdirectory holding a plugin.json manifest.
// A missing plugin directory just means nothing is installed.
func (m *Manager) Discover() error {
	found := make(map[string]*Plugin)

	entries, err := os.ReadDir(m.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, ok := readPlugin(filepath.Join(m.dir, entry.Name()))
		if ok {
			found[p.Manifest.Name] = p
		}
	}

	m.mu.Lock()
	m.byName = found
	m.mu.Unlock()
	return nil
}

// readPlugin loads the manifest under dir. Directories without a parseable
// plugin.json are not plugins.
func readPlugin(dir string) (*Plugin, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "plugin.json"))
	if err != nil {
		return nil, false
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, false
	}

	return &Plugin{
		Manifest:   manifest,
		Path:       dir,
		Executable: filepath.Join(dir, manifest.Executable),
	}, true
}

// Get returns a plugin by name, or ErrPluginNotFound.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byName[name]
	if !ok {
		return nil, ErrPluginNotFound
	}
	return p, nil
}

// List returns all discovered plugins.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugins := make([]*Plugin, 0, len(m.byName))
	for _, p := range m.byName {
		plugins = append(plugins, p)
	}
	return plugins
}

// PluginDir returns the directory the manager scans.
func (m *Manager) PluginDir() string {
	return m.dir
}
