package config

import (
	"time"

	"github.com/schmitthub/cienv/internal/logger"
)

// Sweep backends.
const (
	BackendCLI = "cli"
	BackendAPI = "api"
)

// Settings is the merged cienv configuration: defaults, then
// settings.yaml, then CIENV_* environment variables.
type Settings struct {
	Naming  NamingSettings  `mapstructure:"naming" yaml:"naming"`
	Sweep   SweepSettings   `mapstructure:"sweep" yaml:"sweep"`
	Health  HealthSettings  `mapstructure:"health" yaml:"health"`
	Docker  DockerSettings  `mapstructure:"docker" yaml:"docker"`
	Metrics MetricsSettings `mapstructure:"metrics" yaml:"metrics"`
	Logging LoggingSettings `mapstructure:"logging" yaml:"logging"`

	// Shell runs compose commands. "NO" executes them directly.
	Shell string `mapstructure:"shell" yaml:"shell"`
}

// NamingSettings configures the resource name grammar.
type NamingSettings struct {
	Prefix  string `mapstructure:"prefix" yaml:"prefix"`
	Divider string `mapstructure:"divider" yaml:"divider"`
}

// SweepSettings configures the orphan sweep.
type SweepSettings struct {
	// RetentionMinutes is nil when unset; see Settings.RetentionMinutes.
	RetentionMinutes *int   `mapstructure:"retention_minutes" yaml:"retention_minutes"`
	Backend          string `mapstructure:"backend" yaml:"backend"`
}

// HealthSettings configures the default readiness probe.
type HealthSettings struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Path    string        `mapstructure:"path" yaml:"path"`
}

type DockerSettings struct {
	Binary string `mapstructure:"binary" yaml:"binary"`
}

type MetricsSettings struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" yaml:"pushgateway_url"`
}

// LoggingSettings configures the rotating log file.
type LoggingSettings struct {
	FileEnabled *bool `mapstructure:"file_enabled" yaml:"file_enabled"`
	MaxSizeMB   int   `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxAgeDays  int   `mapstructure:"max_age_days" yaml:"max_age_days"`
	MaxBackups  int   `mapstructure:"max_backups" yaml:"max_backups"`
}

// LoggerConfig converts the settings for logger.InitWithFile.
func (l LoggingSettings) LoggerConfig() *logger.LoggingConfig {
	return &logger.LoggingConfig{
		FileEnabled: l.FileEnabled,
		MaxSizeMB:   l.MaxSizeMB,
		MaxAgeDays:  l.MaxAgeDays,
		MaxBackups:  l.MaxBackups,
	}
}
