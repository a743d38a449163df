// Package category files classified subgraphs into category containers and
// moves them between categories under merge rules.
//
// # Classification Stage
//
// [Classify] runs topology.Classify over every subgraph of a partition and
// builds a [Table]: seven [Category] containers, each holding subgraph keys
// and a [Policy]. The policy flags say whether subgraphs may leave or enter
// the category, and whether the layout stage should pool all members before
// splitting them by size.
//
// # Merge Engine
//
// [Table.Merge] applies [MergeRule] values strictly in order. A move is legal
// when the origin category allows leaving, the destination category allows
// entering, and the origin's sources are a subset of the destination's. For
// each origin the first legal destination in ascending key order is taken.
//
// Selection and mutation are separate passes so that candidates are always
// chosen from the state before the rule began. Each rule yields a
// [RuleReport] listing the moves it made.
package category
