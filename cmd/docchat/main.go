package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docchat/docchat/internal/config"
	"github.com/docchat/docchat/internal/embed"
	"github.com/docchat/docchat/internal/extract"
	"github.com/docchat/docchat/internal/filestore"
	"github.com/docchat/docchat/internal/handler"
	"github.com/docchat/docchat/internal/job"
	"github.com/docchat/docchat/internal/repo"
	"github.com/docchat/docchat/internal/schedule"
	"github.com/docchat/docchat/internal/service"
	"github.com/docchat/docchat/internal/vectorindex"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "docchat",
		Short: "pdf retrieval backend",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run docchat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logutil.GetLogger(ctx).Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_backend", cfg.Database.Backend),
		zap.String("index_backend", cfg.Index.Backend),
		zap.String("embed_provider", cfg.Embedding.Provider),
	)

	db, err := repo.Open(repo.ConnectOptions{
		Backend:  cfg.Database.Backend,
		Path:     cfg.Database.Path,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := repo.ApplyMigrations(db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	provider, err := embed.NewProvider(embed.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
		APIKey:    cfg.Embedding.APIKey,
		BaseURL:   cfg.Embedding.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("init embedding provider: %w", err)
	}
	provider = embed.WithLRUCache(provider, cfg.Embedding.CacheSize,
		time.Duration(cfg.Embedding.CacheTTL)*time.Second)

	index, err := buildIndex(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init vector index: %w", err)
	}

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	extractor := extract.NewExtractor(nil)
	ingestService := service.NewIngestService(extractor, provider, index, store, service.IngestOptions{
		ChunkSize:     cfg.Ingest.ChunkSize,
		ChunkOverlap:  cfg.Ingest.ChunkOverlap,
		MinChunkChars: cfg.Ingest.MinChunkChars,
		MaxFileSize:   cfg.Ingest.MaxFileSize,
	})
	queryService := service.NewQueryService(provider, index, service.QueryOptions{
		DefaultTopK: cfg.Retrieval.DefaultTopK,
		MaxTopK:     cfg.Retrieval.MaxTopK,
	})
	chatService := service.NewChatService(repo.NewSessionRepo(db), repo.NewMessageRepo(db))

	router := handler.NewRouter(handler.RouterDeps{
		Upload:   handler.NewUploadHandler(ingestService),
		Query:    handler.NewQueryHandler(queryService),
		Chat:     handler.NewChatHandler(chatService),
		Sessions: handler.NewSessionHandler(chatService),

		CORSAllowlist: cfg.CORSOrigins,
		UploadWindow:  time.Duration(cfg.RateLimitMS) * time.Millisecond,
	})

	scheduler := schedule.NewCronScheduler()
	if cfg.FileStore.Type == "local" {
		retention := time.Duration(cfg.Ingest.RetentionHours) * time.Hour
		if err := scheduler.AddJob(job.NewUploadCleanupJob(cfg.FileStore.Dir, retention), "30 3 * * *"); err != nil {
			return err
		}
	}
	if err := scheduler.AddJob(job.NewIndexStatsJob(index), "0 * * * *"); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: router}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", addr))

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildIndex(ctx context.Context, cfg *config.Config) (vectorindex.Index, error) {
	switch cfg.Index.Backend {
	case "memory":
		return vectorindex.NewMemoryIndex(cfg.Embedding.Dimension), nil
	case "pgvector":
		pg := cfg.Index.Postgres
		sslMode := pg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			pg.Host, pg.Port, pg.User, pg.Password, pg.DBName, sslMode)
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		return vectorindex.NewPGVectorIndex(ctx, db, cfg.Embedding.Dimension)
	case "qdrant":
		return vectorindex.NewQdrantIndex(ctx, vectorindex.QdrantConfig{
			URL:        cfg.Index.Qdrant.URL,
			APIKey:     cfg.Index.Qdrant.APIKey,
			Collection: cfg.Index.Qdrant.Collection,
		}, cfg.Embedding.Dimension)
	default:
		return nil, fmt.Errorf("unsupported index backend: %s", cfg.Index.Backend)
	}
}
