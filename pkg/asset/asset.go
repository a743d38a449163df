package asset

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// namespace seeds [FromPath] so the same path always yields the same ID.
var namespace = uuid.MustParse("6f1c2b4e-8a57-4d0e-9d6b-3f6f0a4c1e25")

// ID is the stable, globally unique identity of one content asset.
//
// Equality and ordering are by the 128-bit value only. The text form is the
// canonical hyphenated GUID, so IDs serialize as single string tokens and can
// be used directly as JSON object keys.
type ID uuid.UUID

// Nil is the zero ID. It never identifies a real asset.
var Nil ID

// NewID returns a random ID.
func NewID() ID { return ID(uuid.New()) }

// FromPath returns a deterministic ID derived from an asset path. Catalog
// importers that lack a native GUID use it to get reproducible identities.
func FromPath(p string) ID {
	return ID(uuid.NewSHA1(namespace, []byte(p)))
}

// Parse decodes the text form of an ID.
func Parse(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, err
	}
	return ID(u), nil
}

// MustParse is like [Parse] but panics on malformed input. Intended for tests
// and package-level fixtures.
func MustParse(s string) ID { return ID(uuid.MustParse(s)) }

// String returns the canonical text form.
func (id ID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether id is the zero ID.
func (id ID) IsNil() bool { return id == Nil }

// MarshalText implements [encoding.TextMarshaler].
func (id ID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (id *ID) UnmarshalText(data []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(data); err != nil {
		return err
	}
	*id = ID(u)
	return nil
}

// Hash folds the 128-bit value into 64 bits (high half XOR low half).
func (id ID) Hash() uint64 {
	return binary.BigEndian.Uint64(id[:8]) ^ binary.BigEndian.Uint64(id[8:])
}

// Compare orders IDs by their bytes. It returns -1, 0 or +1.
func (id ID) Compare(other ID) int { return bytes.Compare(id[:], other[:]) }

// SortIDs sorts ids in place by [ID.Compare].
func SortIDs(ids []ID) { slices.SortFunc(ids, ID.Compare) }

// Info is the diagnostic record of one asset. Path is used for logs, group
// naming and rendering, never for identity.
type Info struct {
	Path      string `json:"path,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	HasSize   bool   `json:"has_size,omitempty"`
}

// Catalog maps IDs to their diagnostic info. A nil Catalog is valid and
// knows nothing.
type Catalog map[ID]Info

// Path returns the recorded path of id, or its ID string when unknown.
func (c Catalog) Path(id ID) string {
	if info, ok := c[id]; ok && info.Path != "" {
		return info.Path
	}
	return id.String()
}

// BaseName returns the file name of id's path without directory and
// extension. Returns "" when the path is unknown.
func (c Catalog) BaseName(id ID) string {
	info, ok := c[id]
	if !ok || info.Path == "" {
		return ""
	}
	base := path.Base(strings.ReplaceAll(info.Path, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// Size returns the recorded size of id in bytes. ok is false when no size
// data exists for the asset.
func (c Catalog) Size(id ID) (size int64, ok bool) {
	info, found := c[id]
	if !found || !info.HasSize {
		return 0, false
	}
	return info.SizeBytes, true
}

// SizeFunc adapts the catalog to the node-size function used by size-bounded
// splitting.
func (c Catalog) SizeFunc() func(ID) (int64, bool) { return c.Size }

// Set is an unordered set of IDs. Its JSON form is a sorted array, so equal
// sets always serialize identically.
type Set map[ID]struct{}

// NewSet returns a set containing ids.
func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id.
func (s Set) Add(id ID) { s[id] = struct{}{} }

// Contains reports whether id is a member. Safe on a nil set.
func (s Set) Contains(id ID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the member count.
func (s Set) Len() int { return len(s) }

// Sorted returns the members in ascending [ID.Compare] order.
func (s Set) Sorted() []ID {
	ids := make([]ID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}

// SubsetOf reports whether every member of s is in other.
// The empty set is a subset of every set.
func (s Set) SubsetOf(other Set) bool {
	if len(s) > len(other) {
		return false
	}
	for id := range s {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// Equal reports whether s and other have the same members.
func (s Set) Equal(other Set) bool {
	return len(s) == len(other) && s.SubsetOf(other)
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the set as a sorted array of ID strings.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of ID strings.
func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []ID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}

// IgnoreSet holds assets excluded from grouping. Stages only read it.
type IgnoreSet = Set
