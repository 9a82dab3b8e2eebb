// Package kv selects the session storage backend from the configuration.
package kv

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/sahayak/core"
	"github.com/trezcool/sahayak/storage/database"
	"github.com/trezcool/sahayak/storage/database/sqlx"
	"github.com/trezcool/sahayak/storage/kv/file"
	"github.com/trezcool/sahayak/storage/kv/inmem"
	"github.com/trezcool/sahayak/storage/kv/signed"
)

// Open returns the KVStore configured by conf.Storage. closeFn releases the backend's resources.
func Open(ctx context.Context, conf *core.Config) (store core.KVStore, closeFn func() error, err error) {
	closeFn = func() error { return nil }

	switch conf.Storage.Engine {
	case core.StorageMemory:
		store = inmemkv.New()
	case core.StorageFile:
		path := conf.Storage.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(conf.WorkDir, path)
		}
		if store, err = filekv.New(path); err != nil {
			return nil, nil, errors.Wrap(err, "opening file storage")
		}
	case core.StoragePostgres:
		if err = database.CreateIfNotExist(conf); err != nil {
			return nil, nil, errors.Wrap(err, "creating database")
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		if err = database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		store, closeFn = sqlxkv.New(db), db.Close
	default:
		return nil, nil, core.NewArgumentError("unknown storage engine: " + conf.Storage.Engine)
	}

	if conf.Storage.Sign {
		if store, err = signedkv.New(store, conf.SecretKey); err != nil {
			_ = closeFn()
			return nil, nil, err
		}
	}
	return store, closeFn, nil
}
