package scene

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/html2deck/pkg/style"
)

// DOTOptions configures scene graph rendering.
type DOTOptions struct {
	// Detailed adds geometry and text to node labels.
	// When false, only the element label is shown.
	Detailed bool
}

// ToDOT converts a deck to Graphviz DOT format. Each slide becomes a cluster;
// nodes with their own background are filled with that color, raster leaves
// are drawn as folders and text leaves with a note shape.
func ToDOT(d *Deck, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph scene {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.2;\n")

	for _, sl := range d.Slides {
		root := fmt.Sprintf("slide%d", sl.Index)
		fmt.Fprintf(&buf, "\n  subgraph cluster_%d {\n", sl.Index)
		fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("slide %d", sl.Index+1))
		fmt.Fprintf(&buf, "    %q [label=%q, shape=plaintext, style=\"\"];\n", root, slideLabel(sl))

		var edges []string
		var visit func(parent string, n *Node)
		visit = func(parent string, n *Node) {
			id := root + "/" + n.ID
			fmt.Fprintf(&buf, "    %q [%s];\n", id, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
			edges = append(edges, fmt.Sprintf("    %q -> %q;\n", parent, id))
			for _, c := range n.Children {
				visit(id, c)
			}
		}
		for _, n := range sl.Elements {
			visit(root, n)
		}
		for _, e := range edges {
			buf.WriteString(e)
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func slideLabel(sl Slide) string {
	if sl.Background == "" {
		return "slide"
	}
	if g := style.ParseLinearGradient(sl.Background); g != nil {
		return fmt.Sprintf("slide (gradient, %d stops)", len(g.Stops))
	}
	return "slide"
}

func fmtLabel(n *Node, detailed bool) string {
	label := n.Label()
	if !detailed {
		return label
	}
	parts := []string{label, fmt.Sprintf("%.0f,%.0f %.0fx%.0f", n.Box.X, n.Box.Y, n.Box.Width, n.Box.Height)}
	if n.HasText() {
		parts = append(parts, strconv.Quote(truncate(strings.TrimSpace(n.Text), 32)))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	switch {
	case n.IsRaster():
		attrs = append(attrs, "shape=folder", "fillcolor=lightgrey")
	case n.HasText():
		attrs = append(attrs, "shape=note")
	}
	if n.OwnBackground {
		if c := style.ParseColor(n.Style.BackgroundColor); !c.IsTransparent() {
			attrs = append(attrs, fmt.Sprintf("fillcolor=\"#%s\"", c.Flatten().Hex()))
		}
	}
	return attrs
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
