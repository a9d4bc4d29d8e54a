// Package config provides configuration structures and loading for PgArchive.
package config

// DBConfig holds the Postgres connection settings, read from the [db]
// section of the INI config file.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Schema   string `mapstructure:"schema"`
}

// ArchiverConfig holds archival behavior settings, read from the [archive]
// section of the INI config file.
type ArchiverConfig struct {
	IsDebug       bool   `mapstructure:"is_debug"`
	ChunkSize     int    `mapstructure:"chunk_size"`
	MaxDepth      int    `mapstructure:"max_depth"`
	ToArchive     bool   `mapstructure:"to_archive"`
	ArchiveSuffix string `mapstructure:"archive_suffix"`
}

// Config is the complete application configuration.
type Config struct {
	DB       DBConfig       `mapstructure:"db"`
	Archiver ArchiverConfig `mapstructure:"archive"`
}

// DefaultConfig returns a Config with the same defaults as the original
// ArchiverConfig dataclass. In db only port (5432) and schema ("public")
// have defaults; host/user/dbname are required by Validate, password is
// optional.
func DefaultConfig() *Config {
	return &Config{
		DB: DBConfig{
			Port:   5432,
			Schema: "public",
		},
		Archiver: ArchiverConfig{
			IsDebug:       false,
			ChunkSize:     1000,
			MaxDepth:      20,
			ToArchive:     true,
			ArchiveSuffix: "archive",
		},
	}
}
