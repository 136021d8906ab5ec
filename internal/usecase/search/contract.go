package search

import (
	"context"

	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/result"
)

// Searcher runs a remote search.
// An empty set with an error wrapping domain.ErrEmptyResult means "no matches".
type Searcher interface {
	Search(ctx context.Context, t mode.Type, query string) (result.Set, error)
}

// Cache stores result sets by normalized key.
type Cache interface {
	Get(ctx context.Context, key string) (result.Set, bool)
	Put(ctx context.Context, key string, data result.Set)
}

// Notifier shows user-facing notifications.
type Notifier interface {
	Notify(n Notification)
}
