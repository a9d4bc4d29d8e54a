package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DB.Port != 5432 {
		t.Errorf("expected db port 5432, got %d", cfg.DB.Port)
	}
	if cfg.DB.Schema != "public" {
		t.Errorf("expected db schema 'public', got %s", cfg.DB.Schema)
	}
	if cfg.Archiver.IsDebug {
		t.Errorf("expected is_debug false by default")
	}
	if cfg.Archiver.ChunkSize != 1000 {
		t.Errorf("expected chunk_size 1000, got %d", cfg.Archiver.ChunkSize)
	}
	if cfg.Archiver.MaxDepth != 20 {
		t.Errorf("expected max_depth 20, got %d", cfg.Archiver.MaxDepth)
	}
	if !cfg.Archiver.ToArchive {
		t.Errorf("expected to_archive true by default")
	}
	if cfg.Archiver.ArchiveSuffix != "archive" {
		t.Errorf("expected archive_suffix 'archive', got %s", cfg.Archiver.ArchiveSuffix)
	}
}
