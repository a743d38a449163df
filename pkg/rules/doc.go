// Package rules loads merge and output rule configuration.
//
// # File Format
//
// Rules are read from TOML, YAML or JSON; the format follows the file
// extension. A TOML example:
//
//	max_size_mb = 8
//
//	[categories.SharedAssets]
//	merge_all_before_grouping = true
//
//	[[merge]]
//	name = "small singles into shared"
//	origin = "SharedSingles"
//	destination = "SharedAssets"
//	origin_when = "size_mb < 1.0"
//
//	[[output]]
//	category = "Hierarchies"
//	template = "PackedScenes"
//
// Merge rules run in file order. Output rules are tried in file order within
// a category.
//
// # Predicates
//
// origin_when, destination_when and when are CEL expressions evaluated
// against one subgraph. Available variables: node_count, source_count,
// shared, category, name, key and size_mb. An expression must have type
// bool; anything else is rejected when the file is compiled, before any stage
// runs.
package rules
