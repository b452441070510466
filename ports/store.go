package ports

import "context"

// Store is a durable per-plugin key/value store. It survives restarts and is
// never cleared automatically. Implementations return core.ErrNotFound for a
// missing item.
type Store interface {
	GetItem(ctx context.Context, pluginID, key string) (string, error)
	SetItem(ctx context.Context, pluginID, key, value string) error
	DeleteItem(ctx context.Context, pluginID, key string) error
}
