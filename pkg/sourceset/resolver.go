package sourceset

import (
	"fmt"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/depgraph"
)

// Strategy selects how raw source sets are computed. Both strategies return
// identical sets; they differ only in cost.
type Strategy int

const (
	// StrategyReachability walks the transpose once with a visited set and
	// keeps the source nodes it meets. Linear in the size of the backward
	// closure.
	StrategyReachability Strategy = iota

	// StrategyPaths enumerates every simple backward path that ends at a
	// source node and keeps the endpoints. Exponential in the worst case.
	StrategyPaths
)

// String returns the strategy name used in configuration.
func (s Strategy) String() string {
	switch s {
	case StrategyReachability:
		return "reachability"
	case StrategyPaths:
		return "paths"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps a configuration name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "reachability":
		return StrategyReachability, nil
	case "paths":
		return StrategyPaths, nil
	default:
		return 0, fmt.Errorf("unknown source set strategy %q", name)
	}
}

// Status reports what happened when resolving one node.
type Status int

const (
	// Resolved means the node has a non-empty source set.
	Resolved Status = iota
	// Ignored means the node itself is in the ignore set.
	Ignored
	// OwnedByIgnored means every source of the node is ignored.
	OwnedByIgnored
	// Unrooted means no source node can reach the node. This only happens
	// for nodes inside cycles that no entry point references.
	Unrooted
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Ignored:
		return "ignored"
	case OwnedByIgnored:
		return "owned-by-ignored"
	case Unrooted:
		return "unrooted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Resolver computes source sets against one dependency graph and ignore set.
// Both are read-only for the resolver's lifetime.
type Resolver struct {
	graph    *depgraph.Graph
	ignore   asset.IgnoreSet
	strategy Strategy
}

// NewResolver creates a resolver. A nil ignore set ignores nothing.
func NewResolver(g *depgraph.Graph, ignore asset.IgnoreSet, strategy Strategy) *Resolver {
	return &Resolver{graph: g, ignore: ignore, strategy: strategy}
}

// Raw returns every source node from which n is reachable, ignored ones
// included. A source node's raw set contains itself.
func (r *Resolver) Raw(n asset.ID) asset.Set {
	rev := r.graph.Transpose()
	out := asset.Set{}
	switch r.strategy {
	case StrategyPaths:
		for _, p := range rev.AllPaths(n, r.graph.IsSource) {
			out.Add(p[len(p)-1])
		}
	default:
		rev.DFS(n, nil, func(id asset.ID) bool {
			if r.graph.IsSource(id) {
				out.Add(id)
			}
			return true
		})
	}
	return out
}

// Resolve returns the source set of n after applying the ignore policy:
//
//  1. If n is ignored it has no source set (Ignored).
//  2. The raw set is computed by walking references backward.
//  3. If every raw source is ignored the node is dropped (OwnedByIgnored).
//  4. Otherwise ignored sources are removed and the rest is returned.
//
// A node with an empty raw set is reported as Unrooted. The returned set is
// non-empty exactly when the status is Resolved.
func (r *Resolver) Resolve(n asset.ID) (asset.Set, Status) {
	if r.ignore.Contains(n) {
		return nil, Ignored
	}
	raw := r.Raw(n)
	if len(raw) == 0 {
		return nil, Unrooted
	}
	if raw.SubsetOf(r.ignore) {
		return nil, OwnedByIgnored
	}
	for id := range raw {
		if r.ignore.Contains(id) {
			delete(raw, id)
		}
	}
	return raw, Resolved
}
