// Package snapshot is the persistence boundary of the grouping engine.
//
// # Graph Documents
//
// A [Graph] document carries the asset dependency graph, its ignore list and
// per-asset diagnostics (path, size):
//
//	{
//	  "nodes": [
//	    {"id": "5d0c...", "path": "Assets/Scenes/Main.unity"},
//	    {"path": "Assets/Textures/Wall.png", "size": 1048576}
//	  ],
//	  "edges": [
//	    {"from": "Assets/Scenes/Main.unity", "to": "Assets/Textures/Wall.png"}
//	  ],
//	  "ignore": ["Assets/Scenes/Test.unity"]
//	}
//
// Node IDs are GUIDs. A node without one is identified by [asset.FromPath] of
// its path, so re-importing the same project yields the same IDs.
//
// # Checkpoints
//
// Each pipeline stage result can be saved as a [Checkpoint]: a versioned
// envelope around a partition, a category table or a group layout. Reading a
// checkpoint validates the payload invariants (unique node ownership, keys
// matching their source sets, category membership) before it is handed to
// the next stage.
//
// All JSON is written with two-space indentation, and sets and maps encode in
// sorted order, so identical results produce byte-identical files.
package snapshot
