package media

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/sylvim/inkblock/internal/logger"
)

// Preview is link metadata for an embed block. Any field may be empty.
type Preview struct {
	Title       string
	Description string
	Image       string
}

// PreviewFetcher is the injected link-preview collaborator. A nil
// preview or an error degrades the embed to a plain link; neither is
// ever surfaced to the user.
type PreviewFetcher interface {
	FetchPreview(ctx context.Context, url string) (*Preview, error)
}

// previewTTL bounds how long fetched previews are reused.
const previewTTL = 15 * time.Minute

// PreviewCache memoizes fetch results per url, including misses, so a
// flaky or slow provider is consulted at most once per TTL window.
type PreviewCache struct {
	fetcher PreviewFetcher
	cache   *gocache.Cache
}

// NewPreviewCache wraps a fetcher with TTL memoization. fetcher may be
// nil, in which case every lookup degrades to a plain link.
func NewPreviewCache(fetcher PreviewFetcher) *PreviewCache {
	return &PreviewCache{
		fetcher: fetcher,
		cache:   gocache.New(previewTTL, 2*previewTTL),
	}
}

// Fetch returns the preview for url, or nil when none is available.
func (p *PreviewCache) Fetch(ctx context.Context, url string) *Preview {
	if p.fetcher == nil || url == "" {
		return nil
	}
	if cached, ok := p.cache.Get(url); ok {
		return cached.(*Preview) // May be a cached nil-miss
	}

	preview, err := p.fetcher.FetchPreview(ctx, url)
	if err != nil {
		logger.DebugTagf("media", "Preview fetch for %s failed: %v", url, err)
		preview = nil
	}
	p.cache.SetDefault(url, preview)
	return preview
}
