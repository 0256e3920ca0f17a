package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int              `json:"port"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Database    DatabaseConfig   `json:"database"`
	Embedding   EmbeddingConfig  `json:"embedding"`
	Index       IndexConfig      `json:"index"`
	Ingest      IngestConfig     `json:"ingest"`
	Retrieval   RetrievalConfig  `json:"retrieval"`
	FileStore   FileStoreConfig  `json:"file_store"`
	CORSOrigins []string         `json:"cors_origins"`
	RateLimitMS int              `json:"rate_limit_ms"`
}

type DatabaseConfig struct {
	Backend  string `json:"backend"`
	Path     string `json:"path"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type EmbeddingConfig struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
	APIKey    string `json:"api_key"`
	BaseURL   string `json:"base_url"`
	CacheSize int    `json:"cache_size"`
	CacheTTL  int    `json:"cache_ttl_seconds"`
}

type IndexConfig struct {
	Backend  string       `json:"backend"`
	Postgres PGConfig     `json:"postgres"`
	Qdrant   QdrantConfig `json:"qdrant"`
}

type PGConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type QdrantConfig struct {
	URL        string `json:"url"`
	APIKey     string `json:"api_key"`
	Collection string `json:"collection"`
}

type IngestConfig struct {
	ChunkSize      int   `json:"chunk_size"`
	ChunkOverlap   int   `json:"chunk_overlap"`
	MinChunkChars  int   `json:"min_chunk_chars"`
	MaxFileSize    int64 `json:"max_file_size"`
	RetentionHours int   `json:"retention_hours"`
}

type RetrievalConfig struct {
	DefaultTopK int `json:"default_top_k"`
	MaxTopK     int `json:"max_top_k"`
}

type FileStoreConfig struct {
	Type string   `json:"type"`
	Dir  string   `json:"dir"`
	S3   S3Config `json:"s3"`
}

type S3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Prefix    string `json:"prefix"`
	UseSSL    bool   `json:"use_ssl"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Database.Backend == "" {
		cfg.Database.Backend = "sqlite"
	}
	switch cfg.Database.Backend {
	case "sqlite":
		if cfg.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if cfg.Database.Host == "" || cfg.Database.DBName == "" {
			return fmt.Errorf("database host/db_name are required for postgres")
		}
	default:
		return fmt.Errorf("database.backend must be sqlite or postgres")
	}
	if cfg.Embedding.Provider == "" {
		return fmt.Errorf("embedding.provider is required")
	}
	if cfg.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive")
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 2048
	}
	if cfg.Embedding.CacheTTL == 0 {
		cfg.Embedding.CacheTTL = 3600
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = "memory"
	}
	switch cfg.Index.Backend {
	case "memory":
	case "pgvector":
		if cfg.Index.Postgres.Host == "" || cfg.Index.Postgres.DBName == "" {
			return fmt.Errorf("index.postgres host/db_name are required for pgvector")
		}
	case "qdrant":
		if cfg.Index.Qdrant.URL == "" {
			return fmt.Errorf("index.qdrant.url is required for qdrant")
		}
		if cfg.Index.Qdrant.Collection == "" {
			cfg.Index.Qdrant.Collection = "pdf_chunks"
		}
	default:
		return fmt.Errorf("index.backend must be memory, pgvector or qdrant")
	}
	if cfg.Ingest.ChunkSize <= 0 {
		cfg.Ingest.ChunkSize = 500
	}
	if cfg.Ingest.ChunkOverlap < 0 {
		return fmt.Errorf("ingest.chunk_overlap must not be negative")
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 50
	}
	if cfg.Ingest.ChunkOverlap >= cfg.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap must be smaller than chunk_size")
	}
	if cfg.Ingest.MinChunkChars <= 0 {
		cfg.Ingest.MinChunkChars = 10
	}
	if cfg.Ingest.MaxFileSize <= 0 {
		cfg.Ingest.MaxFileSize = 50 << 20
	}
	if cfg.Ingest.RetentionHours <= 0 {
		cfg.Ingest.RetentionHours = 7 * 24
	}
	if cfg.RateLimitMS < 0 {
		return fmt.Errorf("rate_limit_ms must not be negative")
	}
	if cfg.Retrieval.DefaultTopK <= 0 {
		cfg.Retrieval.DefaultTopK = 5
	}
	if cfg.Retrieval.MaxTopK <= 0 {
		cfg.Retrieval.MaxTopK = 50
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	switch cfg.FileStore.Type {
	case "local":
		if cfg.FileStore.Dir == "" {
			return fmt.Errorf("file_store.dir is required for local store")
		}
	case "s3":
		if cfg.FileStore.S3.Endpoint == "" || cfg.FileStore.S3.Bucket == "" || cfg.FileStore.S3.SecretID == "" || cfg.FileStore.S3.SecretKey == "" {
			return fmt.Errorf("file_store.s3 endpoint/bucket/secret_id/secret_key are required for s3 store")
		}
		if cfg.FileStore.S3.Region == "" {
			cfg.FileStore.S3.Region = "us-east-1"
		}
	default:
		return fmt.Errorf("file_store.type must be local or s3")
	}
	return nil
}

// applyEnvOverrides lets deployments tune the ingest/retrieval knobs and
// the embedding key without editing the config file.
func applyEnvOverrides(cfg *Config) {
	if v, ok := envInt("CHUNK_SIZE"); ok {
		cfg.Ingest.ChunkSize = v
	}
	if v, ok := envInt("CHUNK_OVERLAP"); ok {
		cfg.Ingest.ChunkOverlap = v
	}
	if v, ok := envInt("MAX_FILE_SIZE"); ok {
		cfg.Ingest.MaxFileSize = int64(v)
	}
	if v, ok := envInt("DEFAULT_TOP_K"); ok {
		cfg.Retrieval.DefaultTopK = v
	}
	if v, ok := envInt("EMBEDDING_DIMENSION"); ok {
		cfg.Embedding.Dimension = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
