// Copyright (c) 2026 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	_environment = "_ENVIRONMENT"
	_configDir   = "_CONFIG_DIR"
	_baseFile    = "base"
	_devEnv      = "development"
)

// Log formats.
const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
	EventsFormat  = "events"
)

// Config is the full configuration.
type Config struct {
	Resolution Resolution `yaml:"resolution"`
	Logging    Logging    `yaml:"logging"`
}

// Resolution tunes the resolver.
type Resolution struct {
	// MaxDepth bounds nested type comparisons and nested requests.
	MaxDepth int `yaml:"maxDepth"`

	// MaxFunctionArity is the largest builtin function type.
	MaxFunctionArity int `yaml:"maxFunctionArity"`

	// StrictSpreadNullability keeps nullable providers from triggering
	// spreading providers whose parameter is not nullable.
	StrictSpreadNullability bool `yaml:"strictSpreadNullability"`
}

// Logging configures the tool's logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ZapLevel parses Level.
func (l Logging) ZapLevel() (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return lvl, errors.Wrapf(err, "invalid log level %q", l.Level)
	}
	return lvl, nil
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Resolution: Resolution{
			MaxDepth:                256,
			MaxFunctionArity:        8,
			StrictSpreadNullability: true,
		},
		Logging: Logging{
			Level:  "info",
			Format: ConsoleFormat,
		},
	}
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if c.Resolution.MaxDepth <= 0 {
		return errors.Errorf("resolution.maxDepth must be positive, got %d", c.Resolution.MaxDepth)
	}
	if c.Resolution.MaxFunctionArity < 0 {
		return errors.Errorf("resolution.maxFunctionArity must not be negative, got %d", c.Resolution.MaxFunctionArity)
	}
	switch c.Logging.Format {
	case ConsoleFormat, JSONFormat, EventsFormat:
	default:
		return errors.Errorf("logging.format must be one of %q, %q or %q, got %q",
			ConsoleFormat, JSONFormat, EventsFormat, c.Logging.Format)
	}
	_, err := c.Logging.ZapLevel()
	return err
}

type lookUpFunc func(string) (string, bool)

// Loader is responsible for loading configs.
type Loader struct {
	envPrefix string

	// Files to load, without extension, from each of dirs.
	configFiles []string

	// Dirs to load from.
	dirs []string

	// Explicit files. Unlike files found in dirs, these must exist.
	paths []string

	// Where to look for environment variables.
	lookUp lookUpFunc
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// EnvPrefix sets the prefix of the environment variables read.
func EnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) { l.envPrefix = prefix }
}

// Dirs overrides the directories searched for config files.
func Dirs(dirs ...string) LoaderOption {
	return func(l *Loader) { l.dirs = dirs }
}

// Files adds config files that must exist, loaded after the searched ones.
func Files(paths ...string) LoaderOption {
	return func(l *Loader) { l.paths = append(l.paths, paths...) }
}

// NewLoader builds a Loader reading the process environment.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		envPrefix: "INJECT",
		dirs:      []string{".", "./config"},
		lookUp:    os.LookupEnv,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.configFiles = []string{_baseFile, l.Environment()}
	return l
}

// Environment returns the current environment name.
func (l *Loader) Environment() string {
	if env, ok := l.lookUp(l.envPrefix + _environment); ok && env != "" {
		return env
	}
	return _devEnv
}

func (l *Loader) searchDirs() []string {
	dirs := append([]string(nil), l.dirs...)
	if dir, ok := l.lookUp(l.envPrefix + _configDir); ok && dir != "" {
		dirs = append(dirs, dir)
	}
	return dirs
}

func (l *Loader) joinFilepaths() []string {
	var files []string
	for _, dir := range l.searchDirs() {
		for _, base := range l.configFiles {
			files = append(files, filepath.Join(dir, base+".yaml"))
		}
	}
	return files
}

// Load reads every config file found, applies environment overrides and
// validates the result.
func (l *Loader) Load() (Config, error) {
	cfg := Default()
	for _, f := range l.joinFilepaths() {
		if err := l.loadFile(f, &cfg, true); err != nil {
			return Config{}, err
		}
	}
	for _, f := range l.paths {
		if err := l.loadFile(f, &cfg, false); err != nil {
			return Config{}, err
		}
	}
	if err := l.applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(path string, cfg *Config, optional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "cannot read config file %q", path)
	}
	expanded := os.Expand(string(data), func(key string) string {
		v, _ := l.lookUp(key)
		return v
	})
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return errors.Wrapf(err, "cannot parse config file %q", path)
	}
	return nil
}

func (l *Loader) applyEnv(cfg *Config) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"_MAX_DEPTH", &cfg.Resolution.MaxDepth},
		{"_MAX_FUNCTION_ARITY", &cfg.Resolution.MaxFunctionArity},
	}
	for _, o := range ints {
		v, ok := l.lookUp(l.envPrefix + o.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %v%v", l.envPrefix, o.key)
		}
		*o.dst = n
	}

	if v, ok := l.lookUp(l.envPrefix + "_STRICT_SPREAD_NULLABILITY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %v_STRICT_SPREAD_NULLABILITY", l.envPrefix)
		}
		cfg.Resolution.StrictSpreadNullability = b
	}
	if v, ok := l.lookUp(l.envPrefix + "_LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := l.lookUp(l.envPrefix + "_LOG_FORMAT"); ok {
		cfg.Logging.Format = v
	}
	return nil
}
