package bookcache

import (
	"context"
	"errors"

	"kitabu/model"
)

type Cache interface {
	Get(ctx context.Context, id int64) (*model.Book, error)
	Set(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
}

var ErrCacheMiss = errors.New("cache miss")

type noop struct{}

// Noop is used when no Redis address is configured; every Get misses.
func Noop() Cache { return noop{} }

func (noop) Get(context.Context, int64) (*model.Book, error) { return nil, ErrCacheMiss }
func (noop) Set(context.Context, *model.Book) error          { return nil }
func (noop) Delete(context.Context, int64) error             { return nil }
