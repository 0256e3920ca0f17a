package filestore

import (
	"context"
	"fmt"
	"io"

	"github.com/docchat/docchat/internal/config"
)

// Store archives uploaded PDFs so a document can be re-processed later
// without asking the client to upload it again.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Type() string
}

func New(cfg config.FileStoreConfig) (Store, error) {
	switch cfg.Type {
	case "local":
		return newLocalStore(cfg.Dir)
	case "s3":
		return newS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported file store type: %s", cfg.Type)
	}
}
