// Package config reads and writes the global idea-canvas settings file,
// ~/.idea-canvas/config.jsonc. The file may carry // comments and trailing
// commas; writes emit plain indented JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendOff    = "off"

	DefaultAutosaveInterval = 5 * time.Second
	DefaultFreshness        = 24 * time.Hour
	DefaultBoard            = "default"
)

type Config struct {
	CurrentBoard string    `json:"currentBoard,omitempty"`
	Autosave     *Autosave `json:"autosave,omitempty"`
	LogLevel     string    `json:"logLevel,omitempty"`
}

type Autosave struct {
	// Backend is "sqlite" (default), "redis" or "off".
	Backend         string `json:"backend,omitempty"`
	IntervalSeconds int    `json:"intervalSeconds,omitempty"`
	RedisAddr       string `json:"redisAddr,omitempty"`
	FreshnessHours  int    `json:"freshnessHours,omitempty"`
}

// AutosaveSettings returns the autosave block with defaults filled in.
func (c *Config) AutosaveSettings() Autosave {
	out := Autosave{}
	if c != nil && c.Autosave != nil {
		out = *c.Autosave
	}
	out.Backend = strings.ToLower(strings.TrimSpace(out.Backend))
	if out.Backend == "" {
		out.Backend = BackendSQLite
	}
	if out.IntervalSeconds <= 0 {
		out.IntervalSeconds = int(DefaultAutosaveInterval / time.Second)
	}
	if out.FreshnessHours <= 0 {
		out.FreshnessHours = int(DefaultFreshness / time.Hour)
	}
	if strings.TrimSpace(out.RedisAddr) == "" {
		out.RedisAddr = "127.0.0.1:6379"
	}
	return out
}

func (a Autosave) Interval() time.Duration {
	return time.Duration(a.IntervalSeconds) * time.Second
}

func (a Autosave) Freshness() time.Duration {
	return time.Duration(a.FreshnessHours) * time.Hour
}

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.idea-canvas).
	if v := strings.TrimSpace(os.Getenv("CANVAS_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".idea-canvas"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.jsonc"), nil
}

// Parse accepts JSON with comments and trailing commas.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(b), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.jsonc.bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(dir, "config.jsonc.*.tmp", path, b, 0o600)
}

// NormalizeBoardName validates a board name for use as a directory name.
func NormalizeBoardName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("board name is empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid board name %q", name)
	}
	return name, nil
}

// ListBoards returns the names of boards under <dir>/boards, sorted.
func ListBoards() ([]string, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	ents, err := os.ReadDir(filepath.Join(dir, "boards"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	out := []string{}
	for _, e := range ents {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
