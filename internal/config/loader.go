package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file name searched for in the
// XDG config directory and the user's home directory.
const DefaultFileName = "tornet.yaml"

// File mirrors the YAML configuration file. Every field is optional;
// zero values mean "keep the current setting". Count is a pointer
// because an explicit 0 ("rotate forever") must be distinguishable
// from the field being absent.
type File struct {
	Interval   string `yaml:"interval"`
	Count      *int   `yaml:"count"`
	Prefer     string `yaml:"prefer"`
	Fallback   string `yaml:"fallback"`
	Torrc      string `yaml:"torrc"`
	Service    string `yaml:"service"`
	HistoryDir string `yaml:"history_dir"`
}

// LoadFile reads and parses the configuration file at path.
// A missing file returns ErrFileNotFound so the caller can decide
// whether that matters (explicit path: fatal; searched path: not).
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &f, nil
}

// FindFile resolves the configuration file path:
//  1. an explicit path is returned as-is when it exists
//  2. $XDG_CONFIG_HOME/tornet/tornet.yaml
//  3. ~/.tornet.yaml
//
// The empty string means no configuration file.
func FindFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	xdgPath := filepath.Join(xdg.ConfigHome, AppName, DefaultFileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}

	if home, err := os.UserHomeDir(); err == nil {
		homePath := filepath.Join(home, "."+AppName+".yaml")
		if _, err := os.Stat(homePath); err == nil {
			return homePath
		}
	}
	return ""
}

// Apply overlays the file's settings onto cfg. Only fields the file
// actually sets are copied, so flag defaults survive an empty file.
func (f *File) Apply(cfg *Config) {
	if f.Interval != "" {
		cfg.Interval = f.Interval
	}
	if f.Count != nil {
		cfg.Count = *f.Count
	}
	if f.Prefer != "" {
		cfg.PreferCountry = f.Prefer
	}
	if f.Fallback != "" {
		cfg.FallbackExits = f.Fallback
	}
	if f.Torrc != "" {
		cfg.TorrcPath = f.Torrc
	}
	if f.Service != "" {
		cfg.Service = f.Service
	}
	if f.HistoryDir != "" {
		cfg.HistoryDir = f.HistoryDir
	}
}

// ParseCountryList splits a comma-separated country list into codes,
// trimming and lowercasing each. "any" or an empty string yield nil,
// meaning no country constraint.
func ParseCountryList(s string) []string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "any" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
