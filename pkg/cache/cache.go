package cache

import (
	"context"
	"time"
)

// Cache stores opaque checkpoint blobs by key.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys for stage checkpoints.
type Keyer interface {
	// StageKey identifies the output of one stage computed from an input
	// with the given options.
	StageKey(stage, inputHash string, opts StageKeyOpts) string
}

// StageKeyOpts holds every option that changes a stage result.
type StageKeyOpts struct {
	Strategy string `json:"strategy,omitempty"`
	// Rules is the hash of the canonical rule configuration.
	Rules            string  `json:"rules,omitempty"`
	DefaultMaxSizeMB float64 `json:"default_max_size_mb,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// StageKey implements [Keyer].
func (DefaultKeyer) StageKey(stage, inputHash string, opts StageKeyOpts) string {
	return hashKey("stage:"+stage, inputHash, opts)
}
