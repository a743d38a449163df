// Package asset defines the identity of content assets and the small
// collections built around it.
//
// # Identity
//
// An [ID] is a 128-bit GUID. Two assets are the same asset iff their IDs are
// equal; paths and names are diagnostics only. IDs marshal to their canonical
// text form, so maps keyed by ID serialize as JSON objects with string keys.
//
// # Catalog
//
// A [Catalog] attaches a path and an optional size to each ID. The grouping
// engine uses it for diagnostics, for naming groups after their source file,
// and as the default size function when splitting merged categories. A
// missing size counts as zero.
//
// # Sets
//
// [Set] is the set type used for source sets and ignore sets. It serializes
// as a sorted array so checkpoints are byte-for-byte reproducible.
package asset
