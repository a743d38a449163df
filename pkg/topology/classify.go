package topology

import (
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/depgraph"
)

// Rule names the decision step that produced a classification.
type Rule string

const (
	RuleIsolated      Rule = "single node, no edges"
	RuleSharedSink    Rule = "single shared node, no outgoing edges"
	RuleSingleSource  Rule = "single node, no incoming edges"
	RuleHierarchy     Rule = "sources contained in nodes"
	RuleSharedSingle  Rule = "single shared node"
	RuleSharedMany    Rule = "several shared nodes"
	RuleExclusive     Rule = "single source, no other rule"
	RuleEmptySubgraph Rule = "empty subgraph"
)

// Result is the outcome of classifying one subgraph.
type Result struct {
	Category Category
	Rule     Rule
	// AmbiguousHierarchy is set when a Hierarchies subgraph contains more
	// than one of its own sources. The class is kept; callers should warn.
	AmbiguousHierarchy bool
}

// Classify assigns a category to the subgraph with the given node and source
// sets. Degrees are read from the forward graph g.
//
// Rules are tried in this order and the first match wins:
//
//  1. One node with in == 0 and out == 0: SingleAssets.
//     One shared node with out == 0: SharedSingleSinks.
//     One node with in == 0: SingleSources.
//  2. More than one node and sources ⊆ nodes: Hierarchies.
//  3. Shared: SharedSingles for one node, otherwise SharedAssets.
//  4. Otherwise: ExclusiveToSingleSource.
//
// Classify is pure and deterministic.
func Classify(nodes, sources asset.Set, g *depgraph.Graph) Result {
	shared := len(sources) > 1

	switch {
	case len(nodes) == 0:
		return Result{Category: Unclassified, Rule: RuleEmptySubgraph}
	case len(nodes) == 1:
		var n asset.ID
		for id := range nodes {
			n = id
		}
		in, out := g.InDegree(n), g.OutDegree(n)
		switch {
		case in == 0 && out == 0:
			return Result{Category: SingleAssets, Rule: RuleIsolated}
		case shared && out == 0:
			return Result{Category: SharedSingleSinks, Rule: RuleSharedSink}
		case in == 0:
			return Result{Category: SingleSources, Rule: RuleSingleSource}
		}
	case sources.SubsetOf(nodes):
		return Result{
			Category:           Hierarchies,
			Rule:               RuleHierarchy,
			AmbiguousHierarchy: len(sources) != 1,
		}
	}

	if shared {
		if len(nodes) == 1 {
			return Result{Category: SharedSingles, Rule: RuleSharedSingle}
		}
		return Result{Category: SharedAssets, Rule: RuleSharedMany}
	}
	return Result{Category: ExclusiveToSingleSource, Rule: RuleExclusive}
}
