// Package plugin loads JavaScript-scripted algorithms at runtime and
// registers them with the algorithm registry. A plugin script declares a
// global `plugin` object:
//
//	var plugin = {
//	    name: "ZScoreOutliers",
//	    version: "1.0.0",
//	    description: "flags values more than 3 sigma from the mean",
//	    kinds: ["NUMERIC"],
//	    initialize: function(params) { return true; }, // optional
//	    execute: function(input) { return "report"; },
//	}
//
// For NUMERIC datasets execute receives {values, mean, stddev, min, max};
// for TEXT datasets it receives {lines, wordFrequency}. It returns either a
// report string or an object {message, data}; throwing fails the task.
package plugin

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/me/godp/internal/algorithm"
	"github.com/me/godp/pkg/model"
)

// Manager owns the set of loaded script plugins and their registrations in
// the algorithm registry.
type Manager struct {
	mu         sync.RWMutex
	algorithms *algorithm.Registry
	plugins    map[string]loadedPlugin
	logger     *slog.Logger
}

type loadedPlugin struct {
	info   model.PluginInfo
	source string
}

// NewManager creates a Manager that registers plugins into the given
// algorithm registry.
func NewManager(algorithms *algorithm.Registry, logger *slog.Logger) *Manager {
	return &Manager{
		algorithms: algorithms,
		plugins:    make(map[string]loadedPlugin),
		logger:     logger.With("component", "plugin"),
	}
}

// Load reads, validates, and registers the plugin script at path. The
// plugin's declared name becomes its algorithm type name.
func (m *Manager) Load(path string) (model.PluginInfo, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return model.PluginInfo{}, fmt.Errorf("read plugin %s: %w", path, err)
	}

	meta, err := probe(string(source))
	if err != nil {
		return model.PluginInfo{}, model.NewValidationError(fmt.Sprintf("plugin %s: %v", path, err))
	}
	meta.Path = path

	m.mu.Lock()
	defer m.mu.Unlock()

	src := string(source)
	kinds := dataKinds(meta.Kinds)
	factory := func() algorithm.Algorithm {
		return newScripted(meta.Name, meta.Description, src, kinds)
	}
	if err := m.algorithms.Register(meta.Name, factory); err != nil {
		return model.PluginInfo{}, err
	}
	m.plugins[meta.Name] = loadedPlugin{info: meta, source: src}

	m.logger.Info("plugin loaded", "name", meta.Name, "version", meta.Version, "path", path)
	return meta, nil
}

// Unload removes a plugin and its algorithm registration. It reports
// whether the name was loaded.
func (m *Manager) Unload(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.plugins[name]; !ok {
		return false
	}
	delete(m.plugins, name)
	m.algorithms.Unregister(name)

	m.logger.Info("plugin unloaded", "name", name)
	return true
}

// List returns the loaded plugins sorted by name.
func (m *Manager) List() []model.PluginInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]model.PluginInfo, 0, len(m.plugins))
	for _, p := range m.plugins {
		infos = append(infos, p.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// LoadDir loads every .js file in dir, skipping files that fail to load.
// Returns the number of plugins loaded.
func (m *Manager) LoadDir(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		m.logger.Warn("plugin dir unreadable", "dir", dir, "error", err)
		return 0
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".js") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := m.Load(path); err != nil {
			m.logger.Warn("plugin skipped", "path", path, "error", err)
			continue
		}
		loaded++
	}
	return loaded
}

// probe runs the script once to extract and validate its metadata.
func probe(source string) (model.PluginInfo, error) {
	vm := goja.New()
	if _, err := vm.RunString(source); err != nil {
		return model.PluginInfo{}, fmt.Errorf("script error: %w", err)
	}

	obj := vm.Get("plugin")
	if obj == nil || goja.IsUndefined(obj) || goja.IsNull(obj) {
		return model.PluginInfo{}, fmt.Errorf("script does not declare a plugin object")
	}

	var decl struct {
		Name        string   `json:"name"`
		Version     string   `json:"version"`
		Description string   `json:"description"`
		Kinds       []string `json:"kinds"`
	}
	if err := vm.ExportTo(obj, &decl); err != nil {
		return model.PluginInfo{}, fmt.Errorf("invalid plugin object: %w", err)
	}
	if decl.Name == "" {
		return model.PluginInfo{}, fmt.Errorf("plugin object missing name")
	}
	if len(decl.Kinds) == 0 {
		return model.PluginInfo{}, fmt.Errorf("plugin %s declares no dataset kinds", decl.Name)
	}
	for _, k := range decl.Kinds {
		if model.DataKind(k) != model.KindNumeric && model.DataKind(k) != model.KindText {
			return model.PluginInfo{}, fmt.Errorf("plugin %s declares unknown dataset kind %q", decl.Name, k)
		}
	}

	execute := obj.ToObject(vm).Get("execute")
	if _, ok := goja.AssertFunction(execute); !ok {
		return model.PluginInfo{}, fmt.Errorf("plugin %s has no execute function", decl.Name)
	}

	return model.PluginInfo{
		Name:        decl.Name,
		Version:     decl.Version,
		Description: decl.Description,
		Kinds:       decl.Kinds,
	}, nil
}

func dataKinds(names []string) []model.DataKind {
	kinds := make([]model.DataKind, len(names))
	for i, n := range names {
		kinds[i] = model.DataKind(n)
	}
	return kinds
}
