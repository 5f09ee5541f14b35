// Package config loads controller settings from YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-fetchforms/pkg/submit"
	"github.com/goliatone/go-fetchforms/pkg/token"
)

// File mirrors the YAML document.
type File struct {
	Selector        string            `yaml:"selector"`
	DisableDuration string            `yaml:"disable_duration"`
	Token           *Token            `yaml:"token"`
	Headers         map[string]string `yaml:"headers"`
}

// Token holds the challenge settings. Value, when set, is handed out as a
// fixed token for scripted runs.
type Token struct {
	Version string `yaml:"version"`
	SiteKey string `yaml:"site_key"`
	Value   string `yaml:"value"`
}

// Load reads and parses the file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document. Unknown keys are rejected.
func Parse(data []byte) (File, error) {
	var cfg File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

// Duration parses DisableDuration. An empty value reports ok=false.
func (f File) Duration() (time.Duration, bool, error) {
	raw := strings.TrimSpace(f.DisableDuration)
	if raw == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false, fmt.Errorf("config: disable_duration %q: %w", raw, err)
	}
	if d < 0 {
		return 0, false, fmt.Errorf("config: disable_duration %q must not be negative", raw)
	}
	return d, true, nil
}

// Options converts the file into controller options.
func (f File) Options() ([]submit.Option, error) {
	var opts []submit.Option
	if s := strings.TrimSpace(f.Selector); s != "" {
		opts = append(opts, submit.WithSelector(s))
	}

	d, ok, err := f.Duration()
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, submit.WithDisableDuration(d))
	}

	if f.Token != nil {
		opts = append(opts, submit.WithToken(token.Config{
			Version: f.Token.Version,
			SiteKey: f.Token.SiteKey,
		}))
		if f.Token.Value != "" {
			opts = append(opts, submit.WithTokenProvider(token.Static(f.Token.Value)))
		}
	}

	if len(f.Headers) > 0 {
		opts = append(opts, submit.WithHeaders(f.Headers))
	}
	return opts, nil
}
