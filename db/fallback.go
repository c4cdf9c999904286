package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gvidela/limitereal/limit"
)

// Fallback is a two-tier profile store: a primary remote repo and a local
// best-effort cache. Reads prefer the primary and refresh the cache on
// success; when the primary errors out (not when the record is simply
// absent) the cached copy is served instead. Writes must succeed on the
// primary; the cache write is best-effort. The cache is therefore never
// authoritative and is overwritten by the next successful remote read.
type Fallback struct {
	primary limit.ProfileRepo
	cache   limit.ProfileRepo
	log     *logrus.Logger
}

func NewFallback(primary, cache limit.ProfileRepo, log *logrus.Logger) *Fallback {
	return &Fallback{primary: primary, cache: cache, log: log}
}

func (f *Fallback) Get(ctx context.Context) (limit.Profile, error) {
	p, err := f.primary.Get(ctx)
	if err == nil {
		if cerr := f.cache.Save(ctx, p); cerr != nil {
			f.log.WithError(cerr).Warn("cache refresh failed")
		}
		return p, nil
	}
	if errors.Is(err, limit.ErrNotFound) {
		return limit.Profile{}, limit.ErrNotFound
	}

	f.log.WithError(err).Warn("primary store unreachable, serving cached profile")

	p, cerr := f.cache.Get(ctx)
	if cerr != nil {
		// Surface the primary failure; the cache miss is secondary.
		return limit.Profile{}, fmt.Errorf("primary.Get: %w", err)
	}
	return p, nil
}

func (f *Fallback) Save(ctx context.Context, p limit.Profile) error {
	if err := f.primary.Save(ctx, p); err != nil {
		return fmt.Errorf("primary.Save: %w", err)
	}
	if err := f.cache.Save(ctx, p); err != nil {
		f.log.WithError(err).Warn("cache write failed")
	}
	return nil
}
