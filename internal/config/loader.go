package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/dbsmedya/pgarchive/internal/apperrors"
)

// Load reads configuration from an INI file with [db] and [archive]
// sections, applying ${VAR}/$VAR environment variable substitution to
// string fields the way the original config.ini tooling does.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("ini")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
// Useful for tests, or when Viper is wired up externally (env binding,
// multiple config sources).
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %v", apperrors.ErrConfigInvalid, err)
	}

	substituteEnvVars(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConfigInvalid, err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) {
	cfg.DB.Host = expandEnvVar(cfg.DB.Host)
	cfg.DB.User = expandEnvVar(cfg.DB.User)
	cfg.DB.Password = expandEnvVar(cfg.DB.Password)
	cfg.DB.DBName = expandEnvVar(cfg.DB.DBName)
	cfg.DB.Schema = expandEnvVar(cfg.DB.Schema)
	cfg.Archiver.ArchiveSuffix = expandEnvVar(cfg.Archiver.ArchiveSuffix)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// ApplyOverrides applies CLI flag overrides to the configuration. Only
// non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(isDebug *bool, chunkSize, maxDepth int, toArchive *bool) {
	if isDebug != nil {
		c.Archiver.IsDebug = *isDebug
	}
	if chunkSize > 0 {
		c.Archiver.ChunkSize = chunkSize
	}
	if maxDepth > 0 {
		c.Archiver.MaxDepth = maxDepth
	}
	if toArchive != nil {
		c.Archiver.ToArchive = *toArchive
	}
}
