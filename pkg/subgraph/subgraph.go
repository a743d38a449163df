package subgraph

import (
	"slices"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/sourceset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/topology"
)

// Info is a maximal set of nodes sharing one source set.
//
// Nodes and Sources are non-empty for every Info produced by partitioning.
// After a merge the donor Info has its Nodes cleared and its Category reset
// to [topology.Unclassified]; it stays in the arena so its key remains valid.
type Info struct {
	Key      sourceset.Key     `json:"key"`
	Nodes    asset.Set         `json:"nodes"`
	Sources  asset.Set         `json:"sources"`
	Shared   bool              `json:"shared"`
	Name     string            `json:"name,omitempty"`
	Category topology.Category `json:"category"`
}

// NodeCount returns the number of member nodes.
func (i *Info) NodeCount() int { return len(i.Nodes) }

// SourceCount returns the number of sources.
func (i *Info) SourceCount() int { return len(i.Sources) }

// Empty reports whether the subgraph has no members left.
func (i *Info) Empty() bool { return len(i.Nodes) == 0 }

// Partition is the arena of all subgraphs, keyed by source-set hash.
// Stages refer to subgraphs by [sourceset.Key] rather than by pointer.
type Partition struct {
	Subgraphs map[sourceset.Key]*Info `json:"subgraphs"`

	// Unrooted lists nodes no source can reach, sorted by ID.
	Unrooted []asset.ID `json:"unrooted,omitempty"`
	// Ignored counts nodes skipped because they are in the ignore set.
	Ignored int `json:"ignored"`
	// OwnedByIgnored counts nodes skipped because only ignored roots reach them.
	OwnedByIgnored int `json:"owned_by_ignored"`

	Warnings []errs.Warning `json:"warnings,omitempty"`

	owner map[asset.ID]sourceset.Key
}

// NewPartition returns an empty arena.
func NewPartition() *Partition {
	return &Partition{
		Subgraphs: make(map[sourceset.Key]*Info),
		owner:     make(map[asset.ID]sourceset.Key),
	}
}

// Add files node n under the subgraph for sources, creating the subgraph on
// first use. sources must be non-empty and must not be modified afterwards.
//
// Add fails with CONSISTENCY_HASH_COLLISION if the key of sources already
// names a subgraph with a different source set, and with
// CONSISTENCY_DUPLICATE_NODE if n was already added.
func (p *Partition) Add(n asset.ID, sources asset.Set) (*Info, error) {
	if p.owner == nil {
		p.reindex()
	}
	key := sourceset.KeyOf(sources)
	if prev, dup := p.owner[n]; dup {
		return nil, errs.New(errs.ErrCodeDuplicateNode,
			"node %s already in subgraph %s, cannot add to %s", n, prev, key)
	}

	info, ok := p.Subgraphs[key]
	switch {
	case !ok:
		info = &Info{
			Key:     key,
			Nodes:   asset.Set{},
			Sources: sources,
			Shared:  len(sources) > 1,
		}
		p.Subgraphs[key] = info
	case !info.Sources.Equal(sources):
		return nil, errs.New(errs.ErrCodeHashCollision,
			"key %s maps to sources %v and %v (node %s)", key,
			info.Sources.Sorted(), sources.Sorted(), n)
	}

	info.Nodes.Add(n)
	p.owner[n] = key
	return info, nil
}

// Get returns the subgraph with key k, or nil.
func (p *Partition) Get(k sourceset.Key) *Info { return p.Subgraphs[k] }

// Owner returns the key of the subgraph that holds n.
func (p *Partition) Owner(n asset.ID) (sourceset.Key, bool) {
	if p.owner == nil {
		p.reindex()
	}
	k, ok := p.owner[n]
	return k, ok
}

// Keys returns all subgraph keys in ascending order.
func (p *Partition) Keys() []sourceset.Key {
	keys := make([]sourceset.Key, 0, len(p.Subgraphs))
	for k := range p.Subgraphs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of subgraphs, empty ones included.
func (p *Partition) Len() int { return len(p.Subgraphs) }

// NodeCount returns the total number of member nodes across all subgraphs.
func (p *Partition) NodeCount() int {
	total := 0
	for _, s := range p.Subgraphs {
		total += len(s.Nodes)
	}
	return total
}

// MoveNodes unions the nodes of subgraph from into subgraph to and empties
// from. It is the only operation that changes membership after partitioning.
func (p *Partition) MoveNodes(from, to sourceset.Key) error {
	src, dst := p.Subgraphs[from], p.Subgraphs[to]
	if src == nil || dst == nil {
		return errs.New(errs.ErrCodeInvariant, "move %s -> %s: unknown subgraph", from, to)
	}
	if from == to {
		return errs.New(errs.ErrCodeInvariant, "move %s onto itself", from)
	}
	if p.owner == nil {
		p.reindex()
	}
	for n := range src.Nodes {
		dst.Nodes.Add(n)
		p.owner[n] = to
	}
	src.Nodes = asset.Set{}
	src.Category = topology.Unclassified
	return nil
}

// Validate checks the arena invariants after loading it from a checkpoint:
// keys match their records, source sets hash to their key, and no node
// belongs to two subgraphs.
func (p *Partition) Validate() error {
	seen := make(map[asset.ID]sourceset.Key)
	for _, k := range p.Keys() {
		s := p.Subgraphs[k]
		if s == nil {
			return errs.New(errs.ErrCodeInvariant, "subgraph %s is null", k)
		}
		if s.Key != k {
			return errs.New(errs.ErrCodeInvariant, "subgraph stored under %s has key %s", k, s.Key)
		}
		if len(s.Sources) == 0 {
			return errs.New(errs.ErrCodeInvariant, "subgraph %s has no sources", k)
		}
		if got := sourceset.KeyOf(s.Sources); got != k {
			return errs.New(errs.ErrCodeHashCollision, "subgraph %s sources hash to %s", k, got)
		}
		for _, n := range s.Nodes.Sorted() {
			if prev, dup := seen[n]; dup {
				return errs.New(errs.ErrCodeDuplicateNode, "node %s in subgraphs %s and %s", n, prev, k)
			}
			seen[n] = k
		}
	}
	p.owner = seen
	return nil
}

func (p *Partition) reindex() {
	p.owner = make(map[asset.ID]sourceset.Key)
	for k, s := range p.Subgraphs {
		for n := range s.Nodes {
			p.owner[n] = k
		}
	}
}
