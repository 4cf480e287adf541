package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/schmitthub/cienv/internal/sweep"
)

// EnvPrefix prefixes every environment override, e.g. CIENV_SWEEP_BACKEND.
const EnvPrefix = "CIENV"

// UseShellEnv is the legacy variable selecting the command shell. It is
// consulted after CIENV_SHELL.
const UseShellEnv = "USE_SHELL"

func newViperConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeysFromSchema(v)
	SetDefaults(v)
	return v
}

// bindEnvKeysFromSchema binds every leaf key of Settings to its CIENV_*
// variable so that Unmarshal sees env-only values.
func bindEnvKeysFromSchema(v *viper.Viper) {
	replacer := strings.NewReplacer(".", "_")
	for _, key := range collectLeafPaths(reflect.TypeOf(Settings{}), "") {
		names := []string{EnvPrefix + "_" + strings.ToUpper(replacer.Replace(key))}
		if key == "shell" {
			names = append(names, UseShellEnv)
		}
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			panic(fmt.Sprintf("config: BindEnv(%q) failed: %v", key, err))
		}
	}
}

// collectLeafPaths returns the dotted mapstructure paths of every leaf
// field of t. time.Duration counts as a leaf.
func collectLeafPaths(t reflect.Type, prefix string) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var paths []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}

		fullPath := tag
		if prefix != "" {
			fullPath = prefix + "." + tag
		}

		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft != reflect.TypeOf(time.Duration(0)) {
			paths = append(paths, collectLeafPaths(ft, fullPath)...)
			continue
		}
		paths = append(paths, fullPath)
	}
	return paths
}

// Load reads settings.yaml from the config directory, if present, and
// applies environment overrides.
func Load() (*Settings, error) {
	path, err := SettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit settings file. A missing file is not
// an error.
func LoadFile(path string) (*Settings, error) {
	v := newViperConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading settings file: %w", err)
	default:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
		}
		if err := v.MergeConfigMap(raw); err != nil {
			return nil, fmt.Errorf("merging settings file %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.UnmarshalExact(&s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Default returns the settings with no file and no environment.
func Default() *Settings {
	v := viper.New()
	SetDefaults(v)
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		panic(fmt.Sprintf("config: decoding defaults: %v", err))
	}
	return &s
}

func (s *Settings) validate() error {
	var errs []error
	switch s.Sweep.Backend {
	case BackendCLI, BackendAPI:
	default:
		errs = append(errs, fmt.Errorf("sweep.backend: unknown backend %q (want %s or %s)", s.Sweep.Backend, BackendCLI, BackendAPI))
	}
	if s.Sweep.RetentionMinutes != nil && *s.Sweep.RetentionMinutes < 0 {
		errs = append(errs, fmt.Errorf("sweep.retention_minutes: must not be negative, got %d", *s.Sweep.RetentionMinutes))
	}
	if s.Health.Timeout < 0 {
		errs = append(errs, fmt.Errorf("health.timeout: must not be negative, got %s", s.Health.Timeout))
	}
	if s.Docker.Binary == "" {
		errs = append(errs, errors.New("docker.binary: must not be empty"))
	}
	return errors.Join(errs...)
}

// RetentionMinutes returns the configured sweep retention, or the CI or
// local default when unset.
func (s *Settings) RetentionMinutes() int {
	if s.Sweep.RetentionMinutes != nil {
		return *s.Sweep.RetentionMinutes
	}
	return sweep.DefaultRetention(IsCI()).Minutes
}

// Retention returns the sweep retention derived from the settings.
func (s *Settings) Retention() sweep.Retention {
	return sweep.Retention{Minutes: s.RetentionMinutes()}
}
