// Package render groups the diagnostic renderers of the grouping engine.
//
// The [nodelink] subpackage draws the dependency graph with Graphviz,
// colored by topology category and clustered by output group.
//
// [nodelink]: github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/render/nodelink
package render
