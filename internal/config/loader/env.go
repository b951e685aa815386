package loader

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultEnvPrefix is the prefix of settings environment variables.
const DefaultEnvPrefix = "PHYSKEY_"

// EnvLoader turns prefixed environment variables into a settings map.
//
// PHYSKEY_KEYBOARD_LONG_PRESS_MODE=sym sets keyboard.long_press_mode: the
// first word names the section and the rest is the snake_case key. A few
// short aliases exist, see Aliases.
type EnvLoader struct {
	prefix  string
	aliases map[string]string
	environ func() []string
}

// NewEnvLoader creates a loader for variables starting with prefix, which
// includes the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		aliases: Aliases(prefix),
		environ: os.Environ,
	}
}

// Aliases returns the short variables and the settings they set. An empty
// path means the variable is not a setting.
func Aliases(prefix string) map[string]string {
	return map[string]string{
		prefix + "CONFIG":    "",
		prefix + "LOG_LEVEL": "logging.level",
		prefix + "LAYOUT":    "layout.name",
		prefix + "DEVICE":    "device.profile",
	}
}

// WithEnviron reads variables from environ instead of the process
// environment.
func (l *EnvLoader) WithEnviron(environ func() []string) *EnvLoader {
	l.environ = environ
	return l
}

// Load returns the settings the environment sets. An empty value counts as
// set.
func (l *EnvLoader) Load() (map[string]any, error) {
	out := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, aliased := l.aliases[name]
		if !aliased {
			path = l.envToPath(name)
		}
		if path != "" {
			setByPath(out, path, parseEnvValue(value))
		}
	}
	return out, nil
}

// envToPath converts PHYSKEY_SYM_AUTO_CLOSE to sym.auto_close.
func (l *EnvLoader) envToPath(name string) string {
	rest := strings.ToLower(strings.TrimPrefix(name, l.prefix))
	section, key, ok := strings.Cut(rest, "_")
	switch {
	case !ok:
		return section
	case section == "" || key == "":
		return ""
	}
	return section + "." + key
}

// parseEnvValue types a variable's value: booleans, integers, decimals,
// durations as whole milliseconds for the *_ms settings, and JSON lists or
// objects. Anything else stays a string.
func parseEnvValue(s string) any {
	switch strings.ToLower(s) {
	case "":
		return s
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d.Milliseconds()
	}
	if (s[0] == '[' || s[0] == '{') && gjson.Valid(s) {
		return gjson.Parse(s).Value()
	}
	return s
}

// setByPath stores value under a dotted path, creating sections as needed.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	last := len(parts) - 1
	for _, part := range parts[:last] {
		next, ok := data[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			data[part] = next
		}
		data = next
	}
	data[parts[last]] = value
}

// ExpandPath expands environment variables and a leading ~ in a settings
// path. Empty input stays empty.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
