// Package nodelink renders asset dependency graphs as node-link diagrams.
//
// # Overview
//
// Nodes appear as boxes connected by arrows, filled with the color of their
// topology category. Given a group layout, every output group becomes a
// dashed cluster, which makes it easy to see why an asset ended up where it
// did.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Catalog: c, Table: t, Layout: l})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
