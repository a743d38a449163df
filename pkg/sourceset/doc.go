// Package sourceset computes, for each asset, the set of entry points that
// reference it directly or transitively, and the hash key that names that set.
//
// # Source Sets
//
// The source set of a node n is every source node (a node nothing references)
// from which n can be reached by following references. It is found by walking
// the transposed graph backward from n. [Resolver.Resolve] applies the ignore
// policy on top: assets reachable only from ignored roots are dropped, while
// assets shared between an ignored and a kept root stay and are attributed to
// the kept roots only.
//
// # Strategies
//
// [StrategyReachability] is the default and visits each backward-reachable node
// once. [StrategyPaths] enumerates simple paths and is kept for parity checks
// and debugging; its cost can grow exponentially on graphs with many diamonds.
//
// # Keys
//
// [KeyOf] folds the member hashes with seed 17 and multiplier 31 over the
// members in ascending ID order. Equal sets always produce equal keys. Distinct
// sets may collide; the partitioner detects that case and fails.
package sourceset
