package config

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/dshills/physkey/internal/config/layer"
	"github.com/dshills/physkey/internal/config/loader"
	"github.com/dshills/physkey/internal/config/notify"
	"github.com/dshills/physkey/internal/config/schema"
	"github.com/dshills/physkey/internal/config/watcher"
	"github.com/dshills/physkey/internal/input/layout"
	"github.com/dshills/physkey/internal/logging"
)

// Sources used in change notifications that do not come from a file.
const (
	SourceAPI = "api"
	SourceEnv = "env"
)

// Config loads physkey settings, keeps them current while the files
// change, and tells subscribers which sections changed.
type Config struct {
	mu sync.RWMutex

	path string
	fs   loader.FileSystem
	env  *loader.EnvLoader

	layers    *layer.Manager
	validator *schema.Validator
	notifier  *notify.Notifier
	logger    *logging.Logger

	enableWatcher bool
	debounce      time.Duration
	watcher       *watcher.Watcher
	extraFiles    map[string]fileRole
	includes      []string

	settings Settings
	loaded   bool
	closed   bool
}

// Option configures a Config instance.
type Option func(*Config)

// WithPath sets the settings file. Default: DefaultPath().
func WithPath(path string) Option {
	return func(c *Config) {
		if path != "" {
			c.path = path
		}
	}
}

// WithFileSystem reads the settings file through fs.
func WithFileSystem(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithEnvLoader replaces the PHYSKEY_* environment loader.
func WithEnvLoader(l *loader.EnvLoader) Option {
	return func(c *Config) {
		c.env = l
	}
}

// WithWatcher enables file watching for live reload.
func WithWatcher(enable bool) Option {
	return func(c *Config) {
		c.enableWatcher = enable
	}
}

// WithDebounce sets how long file changes settle before a reload.
func WithDebounce(d time.Duration) Option {
	return func(c *Config) {
		c.debounce = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a new Config instance with the given options. Call Load
// before reading settings.
func New(opts ...Option) *Config {
	c := &Config{
		fs:            loader.DefaultFS(),
		env:           loader.NewEnvLoader(loader.DefaultEnvPrefix),
		layers:        layer.NewManager(),
		notifier:      notify.New(),
		logger:        logging.NullLogger,
		enableWatcher: true,
		debounce:      100 * time.Millisecond,
		extraFiles:    make(map[string]fileRole),
		settings:      Defaults(),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("config")

	if c.path == "" {
		c.path = DefaultPath()
	}

	if s, err := schema.LoadEmbedded(); err == nil {
		c.validator = schema.NewValidator(s)
	} else {
		c.logger.Error("settings schema unavailable: %v", err)
	}

	return c
}

// DefaultPath returns $XDG_CONFIG_HOME/physkey/physkey.toml, falling back
// to ~/.config/physkey/physkey.toml.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "physkey", "physkey.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "physkey.toml"
	}
	return filepath.Join(home, ".config", "physkey", "physkey.toml")
}

// Path returns the settings file path.
func (c *Config) Path() string {
	return c.path
}

// Load reads defaults, the settings file and the environment. A missing
// settings file is not an error. With the watcher enabled, later changes
// to the file or the layout files it names trigger Reload.
func (c *Config) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	defaults, err := toMap(Defaults())
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.layers.Put(layer.New(layer.SourceDefaults, defaults))

	file, env, err := c.readSources()
	if err == nil {
		var settings Settings
		settings, err = c.applyLocked(file, env)
		if err == nil {
			c.settings = settings
			c.loaded = true
		}
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.logger.Info("loaded settings from %s", c.path)
	if c.enableWatcher {
		c.startWatcher()
	}
	return nil
}

// Reload re-reads the settings file and the environment. On failure the
// previous settings stay active and subscribers receive a ChangeError.
func (c *Config) Reload(ctx context.Context, source string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.loaded {
		c.mu.Unlock()
		return ErrNotLoaded
	}

	old := c.settings
	oldMerged := c.layers.Merge()

	file, env, err := c.readSources()
	var settings Settings
	if err == nil {
		settings, err = c.applyLocked(file, env)
	}
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("reload from %s failed, keeping previous settings: %v", source, err)
		c.notifier.NotifyError(source, err)
		return err
	}
	c.settings = settings
	newMerged := c.layers.Merge()
	c.mu.Unlock()

	c.publish(old, settings, oldMerged, newMerged, source)
	c.notifier.NotifyReload(source)
	c.syncWatches(settings)
	return nil
}

// Set overrides one setting, for example "keyboard.long_press_mode". The
// override outranks the file and the environment and survives reloads.
func (c *Config) Set(path string, value any) error {
	if !strings.Contains(path, ".") || strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") {
		return errors.Wrapf(ErrInvalidPath, "%q", path)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.loaded {
		c.mu.Unlock()
		return ErrNotLoaded
	}

	old := c.settings
	oldMerged := c.layers.Merge()

	flags := layer.New(layer.SourceFlags, nil)
	if prev := c.layers.Layer(flags.Name); prev != nil {
		flags = prev.Clone()
	}
	layer.SetByPath(flags.Data, path, value)

	settings, err := c.applyLocked(flags)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.settings = settings
	newMerged := c.layers.Merge()
	c.mu.Unlock()

	c.publish(old, settings, oldMerged, newMerged, SourceAPI)
	c.syncWatches(settings)
	return nil
}

// Settings returns a snapshot of the active settings.
func (c *Config) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.settings
	s.Sym.Pages = slices.Clone(s.Sym.Pages)
	return s
}

// Merged returns the fully merged configuration.
func (c *Config) Merged() map[string]any {
	return c.layers.Merge()
}

// Origin returns the layer ("defaults", "file", "env" or "flags") that
// supplies path.
func (c *Config) Origin(path string) string {
	return c.layers.WhichLayer(path)
}

// Subscribe registers an observer for all configuration changes.
func (c *Config) Subscribe(observer notify.Observer) *notify.Subscription {
	return c.notifier.Subscribe(observer)
}

// SubscribePath registers an observer for one section, such as "keyboard".
func (c *Config) SubscribePath(path string, observer notify.Observer) *notify.Subscription {
	return c.notifier.SubscribePath(path, observer)
}

// Close stops watching and notifying. It is safe to call more than once.
func (c *Config) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()

	var err error
	if w != nil {
		err = w.Close()
	}
	c.notifier.Close()
	return err
}

// readSources loads the file and environment layers. Call with c.mu held.
func (c *Config) readSources() (*layer.Layer, *layer.Layer, error) {
	fl := loader.NewFileLoader(c.fs, c.path)
	data, err := fl.Load()
	if err != nil {
		return nil, nil, err
	}
	c.includes = fl.Included()
	file := layer.New(layer.SourceFile, data)
	file.Path = c.path

	envData, err := c.env.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading environment")
	}
	return file, layer.New(layer.SourceEnv, envData), nil
}

// applyLocked installs updates and decodes the result. On error the
// previous layers are restored.
func (c *Config) applyLocked(updates ...*layer.Layer) (Settings, error) {
	prev := make([]*layer.Layer, len(updates))
	for i, l := range updates {
		prev[i] = c.layers.Layer(l.Name)
		c.layers.Put(l)
	}

	settings, err := c.decode(c.layers.Merge())
	if err != nil {
		for i, l := range updates {
			if prev[i] != nil {
				c.layers.Put(prev[i])
			} else {
				c.layers.Remove(l.Name)
			}
		}
		return Settings{}, err
	}
	return settings, nil
}

// decode validates a merged map and converts it to Settings.
func (c *Config) decode(merged map[string]any) (Settings, error) {
	return decodeSettings(c.validator, merged)
}

// Decode applies data, a map in physkey.toml shape, over the defaults.
func Decode(data map[string]any) (Settings, error) {
	defaults, err := toMap(Defaults())
	if err != nil {
		return Settings{}, err
	}
	s, err := schema.LoadEmbedded()
	if err != nil {
		return Settings{}, err
	}
	return decodeSettings(schema.NewValidator(s), loader.DeepMerge(defaults, loader.Clone(data)))
}

func decodeSettings(v *schema.Validator, merged map[string]any) (Settings, error) {
	if v != nil {
		if err := v.Validate(merged); err != nil {
			return Settings{}, errors.Wrap(err, "invalid settings")
		}
	}

	raw, err := toml.Marshal(merged)
	if err != nil {
		return Settings{}, errors.Wrap(err, "encoding merged settings")
	}
	var s Settings
	if err := toml.Unmarshal(raw, &s); err != nil {
		return Settings{}, errors.Wrap(err, "decoding settings")
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// publish reports every section that differs, as one batch.
func (c *Config) publish(old, cur Settings, oldMerged, newMerged map[string]any, source string) {
	batch := c.notifier.NewBatch()
	for _, section := range layer.DiffSections(oldMerged, newMerged) {
		batch.Set(section, old.Section(section), cur.Section(section), source)
	}
	if batch.Len() > 0 {
		c.logger.Debug("%d sections changed from %s", batch.Len(), source)
	}
	batch.Commit()
}

func (c *Config) startWatcher() {
	w, err := watcher.New(watcher.WithDebounce(c.debounce), watcher.WithLogger(c.logger))
	if err != nil {
		c.logger.Warn("live reload disabled: %v", err)
		return
	}
	if err := w.Watch(c.path); err != nil {
		c.logger.Warn("not watching %s: %v", c.path, err)
	}
	w.OnChange(c.handleFileChange)

	c.mu.Lock()
	if c.closed || c.watcher != nil {
		c.mu.Unlock()
		_ = w.Close()
		return
	}
	c.watcher = w
	settings := c.settings
	c.mu.Unlock()

	c.syncWatches(settings)
	w.Start()
}

// fileRole says why a file other than the settings file is watched.
type fileRole int

const (
	roleInclude fileRole = iota + 1
	roleLayout
)

// syncWatches watches the files the settings include and the layout files
// they name.
func (c *Config) syncWatches(s Settings) {
	want := make(map[string]fileRole)
	src := s.LayoutSource()
	for _, p := range []string{src.CustomPath, src.TablesPath} {
		if p != "" {
			want[absPath(p)] = roleLayout
		}
	}
	if _, err := layout.Builtin(src.Layout); err != nil && src.Layout != "" {
		want[absPath(src.Layout)] = roleLayout
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.includes {
		want[absPath(p)] = roleInclude
	}
	if c.watcher == nil {
		return
	}
	for p := range c.extraFiles {
		if _, ok := want[p]; !ok {
			_ = c.watcher.Unwatch(p)
			delete(c.extraFiles, p)
		}
	}
	for p, role := range want {
		if _, ok := c.extraFiles[p]; ok {
			c.extraFiles[p] = role
			continue
		}
		if err := c.watcher.Watch(p); err != nil {
			c.logger.Warn("not watching %s: %v", p, err)
			continue
		}
		c.extraFiles[p] = role
	}
}

func (c *Config) handleFileChange(event watcher.Event) {
	c.mu.RLock()
	role := c.extraFiles[event.Path]
	s := c.settings
	c.mu.RUnlock()

	switch {
	case event.Path == absPath(c.path) || role == roleInclude:
		_ = c.Reload(context.Background(), event.Path)
	case role == roleLayout:
		// The settings are unchanged but the files behind them are not.
		c.logger.Info("layout file %s changed (%s)", event.Path, event.Op)
		c.notifier.NotifySet("layout", s.Layout, s.Layout, event.Path)
	}
}

// toMap converts settings to the map form the layers hold.
func toMap(s Settings) (map[string]any, error) {
	raw, err := toml.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "encoding defaults")
	}
	var m map[string]any
	if err := toml.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrap(err, "decoding defaults")
	}
	return m, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
