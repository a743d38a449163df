package snapshot

import (
	"slices"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/depgraph"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
)

// =============================================================================
// Graph - Dependency Graph Document
// =============================================================================

// Graph is the serialization format for an asset dependency graph together
// with its ignore list. It is what importers produce and what every stage
// reads.
//
// Node IDs are optional: a node without one gets [asset.FromPath] of its
// path. Edge endpoints and ignore entries may name a node by GUID or by path.
type Graph struct {
	Nodes  []Node   `json:"nodes" bson:"nodes"`
	Edges  []Edge   `json:"edges" bson:"edges"`
	Ignore []string `json:"ignore,omitempty" bson:"ignore,omitempty"`
}

// Node is one asset.
type Node struct {
	ID   string `json:"id,omitempty" bson:"id,omitempty"`
	Path string `json:"path,omitempty" bson:"path,omitempty"`
	// Size is the asset size in bytes. Absent means unknown.
	Size *int64 `json:"size,omitempty" bson:"size,omitempty"`
}

// Edge is a directed reference: From references To.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// Input is a decoded graph document.
type Input struct {
	Graph   *depgraph.Graph
	Ignore  asset.IgnoreSet
	Catalog asset.Catalog
}

// =============================================================================
// Graph <-> Input Conversion
// =============================================================================

// Decode resolves the document into a dependency graph, ignore set and
// catalog. Nodes keep document order. An edge endpoint that names no
// declared node becomes a node of its own.
func (g Graph) Decode() (*Input, error) {
	b := depgraph.NewBuilder()
	catalog := make(asset.Catalog, len(g.Nodes))
	byPath := make(map[string]asset.ID, len(g.Nodes))

	for i, n := range g.Nodes {
		id, err := nodeID(n)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "node %d", i)
		}
		if _, dup := catalog[id]; dup {
			return nil, errs.New(errs.ErrCodeInvalidInput, "node %d: duplicate id %s", i, id)
		}
		if n.Size != nil && *n.Size < 0 {
			return nil, errs.New(errs.ErrCodeInvalidInput, "node %s: negative size %d", id, *n.Size)
		}
		info := asset.Info{Path: n.Path}
		if n.Size != nil {
			info.SizeBytes, info.HasSize = *n.Size, true
		}
		catalog[id] = info
		if n.Path != "" {
			byPath[n.Path] = id
		}
		b.AddNode(id)
	}

	for i, e := range g.Edges {
		from, err := resolve(e.From, byPath)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "edge %d from", i)
		}
		to, err := resolve(e.To, byPath)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "edge %d to", i)
		}
		b.AddEdge(from, to)
	}

	ignore := asset.NewSet()
	for i, ref := range g.Ignore {
		id, err := resolve(ref, byPath)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "ignore %d", i)
		}
		ignore.Add(id)
	}

	return &Input{Graph: b.Build(), Ignore: ignore, Catalog: catalog}, nil
}

// FromInput converts a decoded input back to a document. Nodes are sorted by
// ID for deterministic output; edges keep insertion order.
func FromInput(in *Input) Graph {
	ids := in.Graph.Nodes()
	asset.SortIDs(ids)

	out := Graph{Nodes: make([]Node, len(ids))}
	for i, id := range ids {
		n := Node{ID: id.String()}
		if info, ok := in.Catalog[id]; ok {
			n.Path = info.Path
			if info.HasSize {
				size := info.SizeBytes
				n.Size = &size
			}
		}
		out.Nodes[i] = n
	}
	in.Graph.Edges(func(from, to asset.ID) bool {
		out.Edges = append(out.Edges, Edge{From: from.String(), To: to.String()})
		return true
	})
	for _, id := range in.Ignore.Sorted() {
		out.Ignore = append(out.Ignore, id.String())
	}
	return out
}

func nodeID(n Node) (asset.ID, error) {
	switch {
	case n.ID != "":
		return asset.Parse(n.ID)
	case n.Path != "":
		return asset.FromPath(n.Path), nil
	default:
		return asset.Nil, errs.New(errs.ErrCodeInvalidInput, "node has neither id nor path")
	}
}

// resolve maps a reference to an ID: a GUID first, then a declared path, then
// the path-derived ID of an undeclared path.
func resolve(ref string, byPath map[string]asset.ID) (asset.ID, error) {
	if ref == "" {
		return asset.Nil, errs.New(errs.ErrCodeInvalidInput, "empty reference")
	}
	if id, err := asset.Parse(ref); err == nil {
		return id, nil
	}
	if id, ok := byPath[ref]; ok {
		return id, nil
	}
	return asset.FromPath(ref), nil
}

// SortedPaths returns the catalog paths of ids, sorted. Unknown IDs appear
// by their GUID.
func SortedPaths(c asset.Catalog, ids []asset.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = c.Path(id)
	}
	slices.Sort(out)
	return out
}
