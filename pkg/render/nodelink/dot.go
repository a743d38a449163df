package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/category"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/depgraph"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/grouplayout"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/topology"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the category and the subgraph key to node labels.
	Detailed bool
	// Catalog supplies node labels. Unknown nodes are labeled by GUID.
	Catalog asset.Catalog
	// Table colors nodes by the category of their subgraph. Nodes outside
	// the table (ignored, unrooted) are drawn dashed.
	Table *category.Table
	// Layout, if set, draws one cluster per output group.
	Layout *grouplayout.Layout
}

// Colors is the fill color of each category.
var Colors = map[topology.Category]string{
	topology.Hierarchies:             "#a6cee3",
	topology.SingleAssets:            "#b2df8a",
	topology.SharedAssets:            "#fb9a99",
	topology.SharedSingles:           "#fdbf6f",
	topology.SharedSingleSinks:       "#cab2d6",
	topology.SingleSources:           "#ffff99",
	topology.ExclusiveToSingleSource: "#1f78b4",
}

// ToDOT converts a dependency graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(g *depgraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	clustered := make(map[asset.ID]bool)
	if opts.Layout != nil {
		for i, name := range opts.Layout.Order {
			grp := opts.Layout.Groups[name]
			fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
			fmt.Fprintf(&buf, "    label=%q;\n    style=\"rounded,dashed\";\n", name+" ("+grp.Template+")")
			for _, id := range grp.Nodes {
				if !g.Has(id) {
					continue
				}
				fmt.Fprintf(&buf, "    %s\n", nodeLine(id, opts))
				clustered[id] = true
			}
			buf.WriteString("  }\n")
		}
	}

	for _, id := range g.Nodes() {
		if !clustered[id] {
			fmt.Fprintf(&buf, "  %s\n", nodeLine(id, opts))
		}
	}

	buf.WriteString("\n")
	g.Edges(func(from, to asset.ID) bool {
		fmt.Fprintf(&buf, "  %q -> %q;\n", from.String(), to.String())
		return true
	})

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLine(id asset.ID, opts Options) string {
	label := opts.Catalog.BaseName(id)
	if label == "" {
		label = id.String()
	}
	attrs := []string{}

	if opts.Table != nil {
		key, ok := opts.Table.Partition.Owner(id)
		info := opts.Table.Partition.Get(key)
		if ok && info != nil && info.Category.Valid() {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", Colors[info.Category]))
			if opts.Detailed {
				label += "\n" + info.Category.String() + "\n" + key.String()
			}
		} else {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		}
	}
	attrs = append([]string{fmt.Sprintf("label=%q", label)}, attrs...)
	return fmt.Sprintf("%q [%s];", id.String(), strings.Join(attrs, ", "))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
