// Package subgraph partitions a dependency graph into subgraphs: maximal node
// sets that share an identical source set.
//
// # Partitioning
//
// [Partitioner.Run] resolves the source set of every non-ignored node (see
// package sourceset) and files the node under the key of that set. The first
// node with a given key creates the [Info]; later nodes join it. The result is
// a [Partition], an arena of subgraphs addressed by key.
//
// Every non-ignored, rooted node lands in exactly one subgraph. Two
// conditions are treated as fatal consistency errors because they can only
// come from a bug or a hash collision:
//
//   - a key already maps to a subgraph with a different source set
//   - a node is filed twice
//
// # Merging
//
// Subgraphs are only ever combined through [Partition.MoveNodes], which
// unions the donor's nodes into the receiver and empties the donor. Stages
// hold keys, never pointers, so no stale references survive a merge.
package subgraph
