package content

import (
	"context"
	"errors"
	"sync/atomic"
)

// Live holds the Site currently being served. Reload swaps in a freshly
// loaded Site; readers always see one complete Site.
type Live struct {
	src  Source
	site atomic.Pointer[Site]
}

// NewLive loads src once and fails if that first load fails.
func NewLive(ctx context.Context, src Source) (*Live, error) {
	l := &Live{src: src}
	if err := l.Reload(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Static wraps an already loaded Site. Reload on it is an error.
func Static(site *Site) *Live {
	l := &Live{}
	l.site.Store(site)
	return l
}

func (l *Live) Site() *Site { return l.site.Load() }

// Reload loads a new Site. On failure the previous Site stays in place.
func (l *Live) Reload(ctx context.Context) error {
	if l.src == nil {
		return errors.New("content: static site cannot be reloaded")
	}
	site, err := l.src.Load(ctx)
	if err != nil {
		return err
	}
	l.site.Store(site)
	return nil
}
