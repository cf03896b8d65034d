package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/internal/configs"
	"skillswap/internal/pkg/logx"
)

func TestMain(m *testing.M) {
	logx.Discard()
	os.Exit(m.Run())
}

// exerciseStorage runs the behaviour every driver must share.
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "ss_user")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "ss_user", `{"uid":"a"}`))
	value, err := s.Get(ctx, "ss_user")
	require.NoError(t, err)
	assert.Equal(t, `{"uid":"a"}`, value)

	require.NoError(t, s.Set(ctx, "ss_user", `{"uid":"b"}`))
	value, err = s.Get(ctx, "ss_user")
	require.NoError(t, err)
	assert.Equal(t, `{"uid":"b"}`, value)

	require.NoError(t, s.Set(ctx, "ss_jwt", "token"))

	require.NoError(t, s.Delete(ctx, "ss_user"))
	_, err = s.Get(ctx, "ss_user")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "ss_user"), "deleting a missing key succeeds")

	value, err = s.Get(ctx, "ss_jwt")
	require.NoError(t, err)
	assert.Equal(t, "token", value)

	assert.Error(t, s.Set(ctx, " ", "x"))
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemory())
}

func TestMemoryStorageHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	assert.ErrorIs(t, m.Set(ctx, "k", "v"), context.Canceled)
	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteStorage(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStorage(t, s)
}

func TestSQLiteStoragePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "local.db")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "ss_user", "persisted"))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	value, err := second.Get(ctx, "ss_user")
	require.NoError(t, err)
	assert.Equal(t, "persisted", value)
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "  ")
	assert.Error(t, err)
}

func TestPostgresStorage(t *testing.T) {
	dsn := os.Getenv("SKILLSWAP_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SKILLSWAP_TEST_DATABASE_URL not set")
	}

	s, err := OpenPostgres(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStorage(t, s)
}

func TestS3ObjectKeyUsesPrefix(t *testing.T) {
	c := &S3{cfg: S3Config{Prefix: "local-storage/"}}
	assert.Equal(t, "local-storage/ss_user", c.objectKey("ss_user"))
}

func TestS3NotFoundRecognition(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(fmt.Errorf("get: %w", &types.NotFound{})))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("timeout")))
}

func TestOpenSelectsDriver(t *testing.T) {
	s, err := Open(context.Background(), &configs.AppConfig{StorageDriver: configs.StorageMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(context.Background(), &configs.AppConfig{
		StorageDriver: configs.StorageSQLite,
		StoragePath:   filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	assert.IsType(t, &SQLite{}, s)

	_, err = Open(context.Background(), &configs.AppConfig{StorageDriver: "redis"})
	assert.Error(t, err)
}
