package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Dir        string
	MemorySize int
	Redis      RedisOptions
	Mongo      MongoOptions
}

// Open creates the configured backend. An empty backend name means
// [BackendNone].
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: directory is required")
		}
		return checked(NewFileCache(opts.Dir))
	case BackendMemory:
		return checked(NewMemoryCache(opts.MemorySize))
	case BackendRedis:
		return checked(NewRedisCache(ctx, opts.Redis))
	case BackendMongo:
		return checked(NewMongoCache(ctx, opts.Mongo))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// checked avoids returning a typed nil inside a non-nil interface.
func checked[C Cache](c C, err error) (Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}
