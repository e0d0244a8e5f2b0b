// Package storage provides object storage abstraction for solved CSV output.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/somasolver/somas/pkg/config"
)

// Storage defines the interface for object storage operations.
type Storage interface {
	// Upload uploads data from reader to the specified key.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// UploadFile uploads a local file to the specified key.
	UploadFile(ctx context.Context, key string, localPath string) error

	// Download downloads data from the specified key.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// DownloadFile downloads data from the specified key to a local file.
	DownloadFile(ctx context.Context, key string, localPath string) error

	// Delete deletes the object at the specified key.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the URL for the specified key (if applicable).
	GetURL(key string) string

	// ListArtifacts returns the keys of every solved-CSV artifact uploaded
	// for traceName, using the mindspore-csv-out/<trace>/ layout ArtifactKey
	// derives keys from.
	ListArtifacts(ctx context.Context, traceName string) ([]string, error)
}

// StorageType represents the type of storage backend.
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeCOS   StorageType = "cos"
)

// NewStorage creates a new Storage instance based on the configuration.
func NewStorage(cfg *config.StorageConfig) (Storage, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	switch StorageType(cfg.Type) {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeCOS:
		return NewCOSStorage(&COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
		})
	default:
		return NewLocalStorage(cfg.LocalPath)
	}
}

// ArtifactKey derives the object key a solved CSV artifact uploads under.
// Layout mirrors the local output tree (mindspore-csv-out/<trace>/...) so a
// bucket listing groups every artifact from one trace together, with ext
// carrying whatever compression suffix was applied to the file on disk
// (".gz", ".zst", or "" for an uncompressed upload).
func ArtifactKey(traceName, ext string) string {
	name := traceName + "-out.csv" + ext
	return path.Join(artifactPrefix(traceName), name)
}

// artifactPrefix is the key prefix every artifact for traceName is uploaded
// under, shared between ArtifactKey and each backend's ListArtifacts.
func artifactPrefix(traceName string) string {
	return path.Join("mindspore-csv-out", traceName)
}

// UploadFileWithRetry uploads localPath to key, retrying transient failures
// with exponential backoff. A solve run's upload happens after the
// expensive portfolio fan-out has already completed, so a flaky network
// call is worth retrying rather than discarding a finished result.
func UploadFileWithRetry(ctx context.Context, s Storage, key, localPath string) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := s.UploadFile(ctx, key, localPath); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithMaxTries(3), backoff.WithMaxElapsedTime(30*time.Second))
	return err
}

// ValidateConfig validates the storage configuration.
func ValidateConfig(cfg *config.StorageConfig) error {
	if cfg == nil {
		return fmt.Errorf("storage config is nil")
	}

	storageType := StorageType(cfg.Type)

	// Empty type defaults to local
	if storageType == "" {
		storageType = StorageTypeLocal
	}

	if storageType != StorageTypeCOS && storageType != StorageTypeLocal {
		return fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}

	if storageType == StorageTypeCOS {
		if cfg.Bucket == "" {
			return fmt.Errorf("COS bucket is required")
		}
		if cfg.Region == "" {
			return fmt.Errorf("COS region is required")
		}
		if cfg.SecretID == "" || cfg.SecretKey == "" {
			return fmt.Errorf("COS credentials are required")
		}
	}

	if storageType == StorageTypeLocal {
		if cfg.LocalPath == "" {
			return fmt.Errorf("local storage path is required")
		}
	}

	return nil
}
