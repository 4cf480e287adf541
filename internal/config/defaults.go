package config

import (
	"github.com/spf13/viper"

	"github.com/schmitthub/cienv/internal/compose"
	"github.com/schmitthub/cienv/internal/naming"
	"github.com/schmitthub/cienv/internal/readiness"
	"github.com/schmitthub/cienv/internal/shell"
)

// SetDefaults registers every default value on v. sweep.retention_minutes
// has none: it depends on whether the run is under CI.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("naming.prefix", naming.DefaultPrefix)
	v.SetDefault("naming.divider", naming.DefaultDivider)
	v.SetDefault("sweep.backend", BackendCLI)
	v.SetDefault("health.timeout", readiness.DefaultTimeout)
	v.SetDefault("health.path", readiness.DefaultPath)
	v.SetDefault("docker.binary", compose.DefaultBinary)
	v.SetDefault("shell", shell.DefaultShell)
	v.SetDefault("logging.file_enabled", true)
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_age_days", 7)
	v.SetDefault("logging.max_backups", 3)
}
