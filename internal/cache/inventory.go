package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix   = "post:%s"
	AuthorKeyPrefix = "author:%s"
	CategoriesKey   = "categories"
	PopularKey      = "posts:popular"
)

const (
	PostTTL       = 10 * time.Minute
	AuthorTTL     = 5 * time.Minute
	CategoriesTTL = 10 * time.Minute
	PopularTTL    = 2 * time.Minute
)

func PostKey(slug string) string {
	return fmt.Sprintf(PostKeyPrefix, slug)
}

func AuthorKey(slug string) string {
	return fmt.Sprintf(AuthorKeyPrefix, slug)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidatePost drops the cached post plus the aggregates its change may
// have shifted.
func InvalidatePost(ctx context.Context, slug string) {
	Invalidate(ctx, PostKey(slug), CategoriesKey, PopularKey)
}

func InvalidateAuthor(ctx context.Context, slug string) {
	Invalidate(ctx, AuthorKey(slug))
}
