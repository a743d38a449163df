// Package pkg provides the core libraries of aagen, the asset group
// generator.
//
// # Overview
//
// aagen takes a dependency graph of assets (scenes, prefabs, materials,
// textures) and derives groups that can be shipped together. The pkg
// directory is organized into four areas:
//
//  1. Graph core: [digraph], [depgraph], [asset]
//  2. Grouping algorithm: [sourceset], [subgraph], [topology], [category],
//     [grouplayout]
//  3. Configuration and persistence: [rules], [snapshot], [cache]
//  4. Orchestration and surfaces: [pipeline], [api], [watch],
//     [observability], [render/nodelink]
//
// # Architecture
//
// The data flow through a run:
//
//	graph.json (nodes, edges, ignore list)
//	         ↓
//	    [snapshot] decode into a depgraph.Graph + asset.Catalog
//	         ↓
//	    [subgraph] partition nodes by source set ([sourceset])
//	         ↓
//	    [topology] classify each subgraph into a category table ([category])
//	         ↓
//	    [category] apply merge rules from [rules]
//	         ↓
//	    [grouplayout] name groups and split them by size
//	         ↓
//	    layout checkpoint (JSON)
//
// Every arrow is a pipeline stage. [pipeline.Runner] executes them with
// cancellation, progress reporting and cached checkpoints.
//
// # Quick Start
//
//	in, _ := snapshot.ReadGraphFile("graph.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, in, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	for _, name := range result.Layout.Order {
//	    fmt.Println(name, len(result.Layout.Groups[name].Nodes))
//	}
//
// # Error Handling
//
// All packages report failures through [errors], whose codes separate
// configuration mistakes (CONFIG_*) from broken invariants (CONSISTENCY_*).
package pkg
