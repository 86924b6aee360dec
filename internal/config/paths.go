package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultBaseDir = ".swarmbot"

// Paths holds resolved filesystem paths for swarmbot data.
type Paths struct {
	Base     string // ~/.swarmbot
	Config   string // ~/.swarmbot/config.yaml
	EnvFile  string // ~/.swarmbot/.env
	Data     string // ~/.swarmbot/data
	Database string // ~/.swarmbot/data/swarmbot.db
	Logs     string // ~/.swarmbot/logs
}

// ResolvePaths lays out the standard paths under SWARMBOT_HOME, or
// ~/.swarmbot when it is unset.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("SWARMBOT_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}
	return PathsAt(base), nil
}

// PathsAt lays out the standard paths under base.
func PathsAt(base string) Paths {
	data := filepath.Join(base, "data")
	return Paths{
		Base:     base,
		Config:   filepath.Join(base, "config.yaml"),
		EnvFile:  filepath.Join(base, ".env"),
		Data:     data,
		Database: filepath.Join(data, "swarmbot.db"),
		Logs:     filepath.Join(base, "logs"),
	}
}

// EnsureDirs creates the base, data and log directories.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Data, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// ParseConfigPath splits a dot-separated key such as "gateway.port" into
// lowercase segments. Keys are case-insensitive, matching viper.
func ParseConfigPath(raw string) ([]string, error) {
	if raw == "" {
		return nil, &ConfigError{Message: "empty config path"}
	}
	parts := strings.Split(strings.ToLower(raw), ".")
	for _, p := range parts {
		if p == "" {
			return nil, &ConfigError{Message: "config path contains empty segment"}
		}
		if i := strings.IndexFunc(p, invalidKeyRune); i >= 0 {
			return nil, &ConfigError{Message: fmt.Sprintf("config path segment %q contains invalid character %q", p, p[i])}
		}
	}
	return parts, nil
}

func invalidKeyRune(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '-')
}

// parent returns the map holding the last segment of path. With create
// set, missing or non-map intermediates are replaced by empty maps.
func parent(root map[string]any, path []string, create bool) (map[string]any, bool) {
	current := root
	for _, key := range path[:len(path)-1] {
		m, ok := current[key].(map[string]any)
		if !ok {
			if !create {
				return nil, false
			}
			m = map[string]any{}
			current[key] = m
		}
		current = m
	}
	return current, true
}

// GetValueAtPath looks up path in a nested map.
func GetValueAtPath(root map[string]any, path []string) (any, bool) {
	m, ok := parent(root, path, false)
	if !ok {
		return nil, false
	}
	v, ok := m[path[len(path)-1]]
	return v, ok
}

// SetValueAtPath stores value at path, creating intermediate maps.
func SetValueAtPath(root map[string]any, path []string, value any) {
	m, _ := parent(root, path, true)
	m[path[len(path)-1]] = value
}

// UnsetValueAtPath deletes the value at path and reports whether it existed.
func UnsetValueAtPath(root map[string]any, path []string) bool {
	m, ok := parent(root, path, false)
	if !ok {
		return false
	}
	last := path[len(path)-1]
	if _, ok := m[last]; !ok {
		return false
	}
	delete(m, last)
	return true
}
