package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/memorial"
	memorialjson "github.com/fwojciec/memorial/json"
	"github.com/fwojciec/memorial/sqlite"
)

// databaseFile is the SQLite database name inside the data dir.
const databaseFile = "memorial.db"

// openPersister opens the configured archive storage. The returned close
// function is always non-nil.
func openPersister(ctx context.Context, cfg config) (memorial.Persister, func() error, error) {
	nop := func() error { return nil }
	switch cfg.Storage {
	case storageFile:
		fs, err := memorialjson.NewFileStore(cfg.DataDir, cfg.Key)
		if err != nil {
			return nil, nop, err
		}
		return fs, nop, nil
	case storageSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return nil, nop, fmt.Errorf("create data dir: %w", err)
		}
		db, err := sqlite.Open(ctx, filepath.Join(cfg.DataDir, databaseFile), cfg.Key)
		if err != nil {
			return nil, nop, err
		}
		return db, db.Close, nil
	default:
		return nil, nop, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}
