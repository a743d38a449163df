package sourceset

import (
	"fmt"
	"strconv"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
)

const (
	hashSeed       = 17
	hashMultiplier = 31
)

// Key identifies a subgraph by the hash of its source set.
//
// Keys print as 16 hex digits and marshal to that text form, so maps keyed by
// Key serialize as JSON objects with string keys.
type Key uint64

// KeyOf hashes a set of source nodes. The members are folded in ascending ID
// order, so the key does not depend on insertion order.
func KeyOf(sources asset.Set) Key {
	return KeyOfIDs(sources.Sorted())
}

// KeyOfIDs hashes ids as a set. ids is not modified and may be in any order;
// duplicate entries are folded once each, so callers should pass a set.
func KeyOfIDs(ids []asset.ID) Key {
	sorted := make([]asset.ID, len(ids))
	copy(sorted, ids)
	asset.SortIDs(sorted)

	h := uint64(hashSeed)
	for _, id := range sorted {
		h = h*hashMultiplier + id.Hash()
	}
	return Key(h)
}

// String returns the 16-digit hex form.
func (k Key) String() string { return fmt.Sprintf("%016x", uint64(k)) }

// ParseKey decodes the text form produced by [Key.String].
func ParseKey(s string) (Key, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse key %q: %w", s, err)
	}
	return Key(v), nil
}

// MarshalText implements [encoding.TextMarshaler].
func (k Key) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (k *Key) UnmarshalText(data []byte) error {
	v, err := ParseKey(string(data))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
