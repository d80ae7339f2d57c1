package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Dir     string
	Redis   RedisOptions
	Mongo   MongoOptions
}

// Clearer is implemented by backends that can drop all cached histories.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Open creates the configured backend, wrapped with [Instrument].
// An empty backend name selects the file cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case "", BackendFile:
		c, err = NewFileCache(opts.Dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, opts.Redis)
	case BackendMongo:
		c, err = NewMongoCache(ctx, opts.Mongo)
	case BackendNone:
		c = NewNullCache()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(c), nil
}

// Clear drops all cached histories from c, unwrapping instrumentation.
// Backends without a Clear method report zero removed entries.
func Clear(ctx context.Context, c Cache) (int, error) {
	if in, ok := c.(instrumented); ok {
		c = in.Cache
	}
	if cl, ok := c.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return 0, nil
}
