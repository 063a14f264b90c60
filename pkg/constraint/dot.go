package constraint

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/goccy/go-graphviz"
)

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Isolated includes pins without any ordering constraint.
	Isolated bool
	// Groups maps a node to a cluster name (typically its cell). Nodes
	// without an entry are drawn outside any cluster.
	Groups map[int]string
}

// ToDOT converts the graph to Graphviz DOT. The layout runs bottom to top so
// that an edge p → q draws q above p, and nodes at the same topological
// level share a rank. A cyclic graph is still exported, just without ranks.
func ToDOT(g *Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph constraints {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	visible := func(id int) bool {
		return opts.Isolated || len(g.outgoing[id]) > 0 || len(g.incoming[id]) > 0
	}

	clusters := make(map[string][]int)
	var loose []int
	for id := range g.NodeCount() {
		if !visible(id) {
			continue
		}
		if name, ok := opts.Groups[id]; ok {
			clusters[name] = append(clusters[name], id)
		} else {
			loose = append(loose, id)
		}
	}

	for i, name := range slices.Sorted(maps.Keys(clusters)) {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", name)
		buf.WriteString("    style=dashed;\n")
		for _, id := range clusters[name] {
			fmt.Fprintf(&buf, "    n%d [label=%q];\n", id, g.Label(id))
		}
		buf.WriteString("  }\n")
	}
	for _, id := range loose {
		fmt.Fprintf(&buf, "  n%d [label=%q];\n", id, g.Label(id))
	}

	if levels, err := g.Levels(); err == nil {
		byLevel := make(map[int][]int)
		for id, lvl := range levels {
			if visible(id) {
				byLevel[lvl] = append(byLevel[lvl], id)
			}
		}
		for _, lvl := range slices.Sorted(maps.Keys(byLevel)) {
			ids := byLevel[lvl]
			if len(ids) < 2 {
				continue
			}
			buf.WriteString("  { rank=same;")
			for _, id := range ids {
				fmt.Fprintf(&buf, " n%d;", id)
			}
			buf.WriteString(" }\n")
		}
	}

	buf.WriteString("\n")
	for _, e := range g.edges {
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.From, e.To)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	gr, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer gr.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, gr, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
