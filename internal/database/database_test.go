package database

import (
	"testing"

	"github.com/dbsmedya/pgarchive/internal/config"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.DBConfig
		expected string
	}{
		{
			name: "basic DSN",
			cfg: &config.DBConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "root",
				Password: "secret",
				DBName:   "testdb",
			},
			expected: "host=localhost port=5432 user=root password=secret dbname=testdb sslmode=prefer",
		},
		{
			name: "custom host and port",
			cfg: &config.DBConfig{
				Host:     "remote-host",
				Port:     5433,
				User:     "admin",
				Password: "p@ssw0rd!",
				DBName:   "mydb",
			},
			expected: "host=remote-host port=5433 user=admin password=p@ssw0rd! dbname=mydb sslmode=prefer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BuildDSN(tt.cfg)
			if result != tt.expected {
				t.Errorf("BuildDSN() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestNewManager(t *testing.T) {
	cfg := &config.DBConfig{
		Host:   "localhost",
		Port:   5432,
		User:   "root",
		DBName: "sourcedb",
	}

	manager := NewManager(cfg)
	if manager == nil {
		t.Fatal("NewManager() returned nil")
	}
	if manager.config != cfg {
		t.Error("manager.config should point to provided config")
	}
	if manager.Pool != nil {
		t.Error("Pool should be nil before Connect()")
	}
}

func TestManagerCloseWithoutConnect(t *testing.T) {
	cfg := &config.DBConfig{Host: "localhost"}
	manager := NewManager(cfg)

	// Should not panic when closing an unconnected manager.
	manager.Close()
}
