package cache

// ScopedKeyer wraps a Keyer with a prefix so several projects can share one
// backend without their checkpoints colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "project:castle:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// StageKey generates a prefixed stage key.
func (k *ScopedKeyer) StageKey(stage, inputHash string, opts StageKeyOpts) string {
	return k.prefix + k.inner.StageKey(stage, inputHash, opts)
}
