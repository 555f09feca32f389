package core

import (
	"context"
	"fmt"
	"os"

	filestore "relieftrack/internal/infra/store/file"
	"relieftrack/internal/infra/store/memory"
	"relieftrack/internal/infra/store/postgres"
	s3store "relieftrack/internal/infra/store/s3"
	"relieftrack/internal/infra/store/sqlite"
	"relieftrack/pkg/domain"
)

// StorageDriver enumerates the snapshot store backends.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"
	StorageFile     StorageDriver = "file"
	StorageSQLite   StorageDriver = "sqlite"
	StoragePostgres StorageDriver = "postgres"
	StorageS3       StorageDriver = "s3"
)

const defaultFilePath = "data/requests.csv"

// OpenSnapshotStore selects a backend from process environment.
//
//	RELIEFTRACK_STORE_DRIVER=memory|file|sqlite|postgres|s3 (default file)
//	RELIEFTRACK_FILE_PATH=<csv path> (file driver, default data/requests.csv)
//	RELIEFTRACK_SQLITE_PATH=<db path> (sqlite driver)
//	RELIEFTRACK_POSTGRES_DSN=<dsn> (postgres driver, required)
//	RELIEFTRACK_S3_* (s3 driver, see the s3 package)
func OpenSnapshotStore(ctx context.Context) (domain.SnapshotStore, error) {
	driver := os.Getenv("RELIEFTRACK_STORE_DRIVER")
	if driver == "" {
		driver = string(StorageFile)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageFile:
		path := os.Getenv("RELIEFTRACK_FILE_PATH")
		if path == "" {
			path = defaultFilePath
		}
		return filestore.NewStore(path), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("RELIEFTRACK_SQLITE_PATH"))
	case StoragePostgres:
		dsn := os.Getenv("RELIEFTRACK_POSTGRES_DSN")
		if dsn == "" {
			return nil, fmt.Errorf("RELIEFTRACK_POSTGRES_DSN required for postgres driver")
		}
		return postgres.NewStore(ctx, dsn)
	case StorageS3:
		return s3store.OpenFromEnv(ctx)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
