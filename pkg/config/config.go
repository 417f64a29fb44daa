// Package config loads the optional YAML configuration file.
//
// Every key is optional. An unset key leaves the built-in default in place, and
// command line flags and environment variables override whatever the file sets.
//
//	log_level: debug
//	encoding: shift_jis
//	output: out.sh
//	timeout: 30
//	quiet: true
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File represents the parsed contents of a configuration file.
type File struct {
	LogLevel string `yaml:"log_level"`
	Encoding string `yaml:"encoding"`
	Output   string `yaml:"output"`
	Timeout  int    `yaml:"timeout"` // 秒
	Quiet    bool   `yaml:"quiet"`
}

// Load parses the configuration file at path.
// An empty file yields an empty configuration; unknown keys are rejected.
func Load(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("config: empty path")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a configuration from r.
func Decode(r io.Reader) (*File, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var cfg File
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &File{}, nil
		}
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	return &cfg, nil
}

func (f *File) validate() error {
	if f.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %d", f.Timeout)
	}
	return nil
}
