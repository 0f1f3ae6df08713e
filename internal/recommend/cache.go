package recommend

import (
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/samber/lo"
)

// trackCache memoizes normalized results per request key.
type trackCache struct {
	c   *ccache.Cache[[]Track]
	ttl time.Duration
}

func newTrackCache(ttl time.Duration, maxSize int64) *trackCache {
	return &trackCache{
		c: ccache.New(
			ccache.Configure[[]Track]().
				MaxSize(maxSize).
				GetsPerPromote(3).
				ItemsToPrune(10),
		),
		ttl: ttl,
	}
}

// fetch returns a deep copy of the cached tracks for key, calling load on a
// miss or after expiry. Failed loads are not cached.
func (c *trackCache) fetch(key string, load func() ([]Track, error)) ([]Track, error) {
	item, err := c.c.Fetch(key, c.ttl, load)
	if err != nil {
		return nil, err
	}
	return cloneTracks(item.Value()), nil
}

// cloneTracks copies tracks including their optional URL pointers, so callers
// never share memory with the cache.
func cloneTracks(tracks []Track) []Track {
	return lo.Map(tracks, func(t Track, _ int) Track {
		t.AlbumArtURL = clonePtr(t.AlbumArtURL)
		t.PreviewURL = clonePtr(t.PreviewURL)
		return t
	})
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	return lo.ToPtr(*s)
}

func (c *trackCache) stop() {
	c.c.Stop()
}
