// Package grouplayout turns categorized subgraphs into the final output: named
// groups of assets, each tagged with a packaging template.
//
// # Output Rules
//
// An [OutputRule] binds a category to a template. Categories are laid out in
// the order their rules appear. Every non-empty category needs a rule; the
// engine never invents a template.
//
// # Group Names
//
// Categories that do not pool their members produce one group per subgraph,
// named after the subgraph's shape:
//
//   - a subgraph with an explicit Name keeps it
//   - a single-source subgraph takes its source file's base name (or the
//     node's own name when it has one node)
//   - a shared single node is named "Shared_" plus its base name
//   - other shared subgraphs are named "Shared_{sources}_{nodes}"
//
// When no usable name results, the subgraph key is used and a warning is
// recorded. A name already taken gets a "_{key}" suffix.
//
// # Size-bounded Splitting
//
// Categories whose policy sets merge_all_before_grouping pool every node into
// one list (subgraphs in ascending key order, nodes in ID order) and [Split]
// it into chunks under a megabyte budget. The budget is soft: a single node
// larger than the budget still forms a chunk. Nodes without size data count
// as zero.
//
// # Verification
//
// [Build] ends by comparing the nodes in all groups with the nodes of all
// categorized subgraphs. Any duplicate or mismatch is a fatal consistency
// error carrying both counts.
package grouplayout
