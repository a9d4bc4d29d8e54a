package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a single configuration validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs = append(errs, c.validateDB()...)
	errs = append(errs, c.validateArchiver()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateDB() ValidationErrors {
	var errs ValidationErrors

	if c.DB.Host == "" {
		errs = append(errs, ValidationError{Field: "db.host", Message: "host is required"})
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, ValidationError{Field: "db.port", Message: "port must be between 1 and 65535"})
	}
	if c.DB.User == "" {
		errs = append(errs, ValidationError{Field: "db.user", Message: "user is required"})
	}
	if c.DB.DBName == "" {
		errs = append(errs, ValidationError{Field: "db.dbname", Message: "dbname is required"})
	}
	if c.DB.Schema == "" {
		errs = append(errs, ValidationError{Field: "db.schema", Message: "schema is required"})
	}

	return errs
}

func (c *Config) validateArchiver() ValidationErrors {
	var errs ValidationErrors

	if c.Archiver.ChunkSize <= 0 {
		errs = append(errs, ValidationError{Field: "archive.chunk_size", Message: "chunk_size must be positive"})
	}
	if c.Archiver.MaxDepth <= 0 {
		errs = append(errs, ValidationError{Field: "archive.max_depth", Message: "max_depth must be positive"})
	}
	if c.Archiver.ArchiveSuffix == "" {
		errs = append(errs, ValidationError{Field: "archive.archive_suffix", Message: "archive_suffix is required"})
	}

	return errs
}
