/*
Package storage is the client's durable local storage: small string records under fixed keys.

It plays the part a browser's localStorage plays for a web front end. Drivers are
selected by configuration; only the identity store reads or writes through it.
*/
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"skillswap/internal/configs"
)

// ErrNotFound is returned by Get when no record exists under the key.
var ErrNotFound = errors.New("storage: key not found")

// Storage is a durable string key/value store.
type Storage interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the driver's resources.
	Close() error
}

// Open builds the driver named in cfg.StorageDriver.
func Open(ctx context.Context, cfg *configs.AppConfig) (Storage, error) {
	switch cfg.StorageDriver {
	case configs.StorageSQLite:
		return OpenSQLite(ctx, cfg.StoragePath)
	case configs.StoragePostgres:
		return OpenPostgres(ctx, cfg.DatabaseDSN)
	case configs.StorageS3:
		return OpenS3(ctx, S3Config{
			BucketName:      cfg.S3BucketName,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Prefix:          cfg.S3Prefix,
		})
	case configs.StorageMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage: key is required")
	}
	return nil
}

// migrationsDir returns the embedded migration set for one dialect.
func migrationsDir(dialect string) (fs.FS, error) {
	sub, err := fs.Sub(embedMigrations, "migrations/"+dialect)
	if err != nil {
		return nil, fmt.Errorf("locate %s migrations: %w", dialect, err)
	}
	return sub, nil
}
