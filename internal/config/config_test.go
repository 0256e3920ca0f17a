package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimalConfig = `{
	"database": {"backend": "sqlite", "path": "test.db"},
	"embedding": {"provider": "openai", "model": "text-embedding-3-small", "dimension": 1536, "api_key": "k"},
	"file_store": {"type": "local", "dir": "uploads"}
}`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	require.Equal(t, 8000, cfg.Port)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.Equal(t, "memory", cfg.Index.Backend)
	require.Equal(t, 500, cfg.Ingest.ChunkSize)
	require.Equal(t, 50, cfg.Ingest.ChunkOverlap)
	require.Equal(t, 10, cfg.Ingest.MinChunkChars)
	require.EqualValues(t, 50<<20, cfg.Ingest.MaxFileSize)
	require.Equal(t, 5, cfg.Retrieval.DefaultTopK)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing sqlite path", `{"database": {"backend": "sqlite"}, "embedding": {"provider": "openai", "dimension": 10}, "file_store": {"type": "local", "dir": "d"}}`},
		{"missing provider", `{"database": {"backend": "sqlite", "path": "x"}, "embedding": {"dimension": 10}, "file_store": {"type": "local", "dir": "d"}}`},
		{"zero dimension", `{"database": {"backend": "sqlite", "path": "x"}, "embedding": {"provider": "openai"}, "file_store": {"type": "local", "dir": "d"}}`},
		{"overlap exceeds size", `{"database": {"backend": "sqlite", "path": "x"}, "embedding": {"provider": "openai", "dimension": 10}, "ingest": {"chunk_size": 100, "chunk_overlap": 100}, "file_store": {"type": "local", "dir": "d"}}`},
		{"bad index backend", `{"database": {"backend": "sqlite", "path": "x"}, "embedding": {"provider": "openai", "dimension": 10}, "index": {"backend": "redis"}, "file_store": {"type": "local", "dir": "d"}}`},
		{"local store without dir", `{"database": {"backend": "sqlite", "path": "x"}, "embedding": {"provider": "openai", "dimension": 10}, "file_store": {"type": "local"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "200")
	t.Setenv("CHUNK_OVERLAP", "20")
	t.Setenv("DEFAULT_TOP_K", "7")
	t.Setenv("EMBEDDING_API_KEY", "from-env")

	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	require.Equal(t, 200, cfg.Ingest.ChunkSize)
	require.Equal(t, 20, cfg.Ingest.ChunkOverlap)
	require.Equal(t, 7, cfg.Retrieval.DefaultTopK)
	require.Equal(t, "from-env", cfg.Embedding.APIKey)
}
