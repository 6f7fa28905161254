package fetch

import (
	"context"
	"errors"

	"github.com/chech0x/parsedBible/internal/logging"
	"github.com/chech0x/parsedBible/internal/pagecache"
)

// CachingSource serves pages from a pagecache.Store and fills it from an
// upstream Source on a miss. With Offline set, misses fail instead.
type CachingSource struct {
	Upstream Source
	Store    *pagecache.Store
	Offline  bool
}

// ErrOffline is returned for cache misses when the source is offline.
var ErrOffline = errors.New("page not cached and offline")

// Fetch implements Source.
func (c *CachingSource) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, err := c.Store.Get(url)
	if err == nil {
		logging.DebugContext(ctx, "page cache hit", "url", url)
		return data, nil
	}
	if !errors.Is(err, pagecache.ErrPageNotFound) {
		logging.WarnContext(ctx, "page cache read failed", "url", url, "error", err.Error())
	}
	if c.Offline {
		return nil, ErrOffline
	}

	data, err = c.Upstream.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := c.Store.Put(url, data); err != nil {
		logging.WarnContext(ctx, "page cache write failed", "url", url, "error", err.Error())
	}
	return data, nil
}
