package repository

import (
	"context"
	"errors"

	"github.com/cockroachdb/pebble"
)

type PebbleRepo struct {
	db *pebble.DB
}

func NewPebbleRepo(db *pebble.DB) *PebbleRepo {
	return &PebbleRepo{db: db}
}

func (r *PebbleRepo) Get(_ context.Context, key string) ([]byte, error) {
	v, closer, err := r.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (r *PebbleRepo) Put(_ context.Context, key string, value []byte) error {
	return r.db.Set([]byte(key), value, pebble.Sync)
}

func (r *PebbleRepo) Close() error {
	return r.db.Close()
}
