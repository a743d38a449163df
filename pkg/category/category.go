package category

import (
	"slices"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/sourceset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/subgraph"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/topology"
)

// Policy holds the flags that govern how a category takes part in merging
// and layout.
type Policy struct {
	CanMoveFrom            bool `json:"can_move_from" toml:"can_move_from" yaml:"can_move_from"`
	CanMoveTo              bool `json:"can_move_to" toml:"can_move_to" yaml:"can_move_to"`
	MergeAllBeforeGrouping bool `json:"merge_all_before_grouping" toml:"merge_all_before_grouping" yaml:"merge_all_before_grouping"`
}

// DefaultPolicy allows moves in both directions and groups subgraphs one by one.
func DefaultPolicy() Policy {
	return Policy{CanMoveFrom: true, CanMoveTo: true}
}

// Category is a container of subgraph keys plus its policy. Members are kept
// in ascending key order.
type Category struct {
	ID      topology.Category `json:"id"`
	Policy  Policy            `json:"policy"`
	Members []sourceset.Key   `json:"members"`
}

// Has reports whether k is a member.
func (c *Category) Has(k sourceset.Key) bool {
	_, found := slices.BinarySearch(c.Members, k)
	return found
}

func (c *Category) add(k sourceset.Key) {
	if i, found := slices.BinarySearch(c.Members, k); !found {
		c.Members = slices.Insert(c.Members, i, k)
	}
}

func (c *Category) remove(k sourceset.Key) {
	if i, found := slices.BinarySearch(c.Members, k); found {
		c.Members = slices.Delete(c.Members, i, i+1)
	}
}

// Len returns the number of member subgraphs.
func (c *Category) Len() int { return len(c.Members) }

// Table is the result of classification: every subgraph of the arena filed
// under one of the seven categories.
type Table struct {
	Partition  *subgraph.Partition             `json:"partition"`
	Categories map[topology.Category]*Category `json:"categories"`
	Rules      map[sourceset.Key]topology.Rule `json:"rules,omitempty"`
	Warnings   []errs.Warning                  `json:"warnings,omitempty"`
}

// NewTable creates an empty table over part with one container per category.
// Categories missing from policies get [DefaultPolicy].
func NewTable(part *subgraph.Partition, policies map[topology.Category]Policy) *Table {
	t := &Table{
		Partition:  part,
		Categories: make(map[topology.Category]*Category, 7),
		Rules:      make(map[sourceset.Key]topology.Rule),
	}
	for _, id := range topology.All() {
		p, ok := policies[id]
		if !ok {
			p = DefaultPolicy()
		}
		t.Categories[id] = &Category{ID: id, Policy: p}
	}
	return t
}

// Category returns the container for id. It is never nil for one of the
// seven named categories.
func (t *Table) Category(id topology.Category) *Category { return t.Categories[id] }

// Subgraphs returns the member subgraphs of id in ascending key order.
func (t *Table) Subgraphs(id topology.Category) []*subgraph.Info {
	c := t.Categories[id]
	if c == nil {
		return nil
	}
	out := make([]*subgraph.Info, 0, len(c.Members))
	for _, k := range c.Members {
		out = append(out, t.Partition.Get(k))
	}
	return out
}

// File places subgraph k in category id, removing it from any other.
func (t *Table) File(k sourceset.Key, id topology.Category) {
	info := t.Partition.Get(k)
	if info != nil && info.Category.Valid() && info.Category != id {
		t.Categories[info.Category].remove(k)
	}
	t.Categories[id].add(k)
	if info != nil {
		info.Category = id
	}
}

// Nodes returns the union of all nodes held by categorized subgraphs.
func (t *Table) Nodes() asset.Set {
	out := asset.Set{}
	for _, id := range topology.All() {
		for _, info := range t.Subgraphs(id) {
			for n := range info.Nodes {
				out.Add(n)
			}
		}
	}
	return out
}

// Counts returns the number of subgraphs per category.
func (t *Table) Counts() map[topology.Category]int {
	out := make(map[topology.Category]int, len(t.Categories))
	for id, c := range t.Categories {
		out[id] = c.Len()
	}
	return out
}

// Validate checks that every member key exists in the arena, is filed under
// exactly one category, and agrees with the subgraph's Category field. Every
// non-empty subgraph must be listed by its category.
func (t *Table) Validate() error {
	if t.Partition == nil {
		return errs.New(errs.ErrCodeInvariant, "table has no partition")
	}
	if err := t.Partition.Validate(); err != nil {
		return err
	}
	if t.Rules == nil {
		t.Rules = make(map[sourceset.Key]topology.Rule)
	}
	filed := make(map[sourceset.Key]topology.Category)
	for _, id := range topology.All() {
		c := t.Categories[id]
		if c == nil {
			return errs.New(errs.ErrCodeInvariant, "category %s missing", id)
		}
		if !slices.IsSorted(c.Members) {
			slices.Sort(c.Members)
		}
		for _, k := range c.Members {
			info := t.Partition.Get(k)
			if info == nil {
				return errs.New(errs.ErrCodeInvariant, "category %s lists unknown subgraph %s", id, k)
			}
			if prev, dup := filed[k]; dup {
				return errs.New(errs.ErrCodeInvariant, "subgraph %s filed under %s and %s", k, prev, id)
			}
			if info.Category != id {
				return errs.New(errs.ErrCodeInvariant, "subgraph %s is %s but filed under %s", k, info.Category, id)
			}
			filed[k] = id
		}
	}
	for _, k := range t.Partition.Keys() {
		info := t.Partition.Get(k)
		if _, ok := filed[k]; !ok && !info.Empty() {
			return errs.New(errs.ErrCodeInvariant, "subgraph %s holds %d node(s) but no category lists it",
				k, info.NodeCount())
		}
	}
	return nil
}
