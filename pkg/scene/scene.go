// Package scene defines the scene graph produced by extraction and consumed
// by shape synthesis.
//
// A [Node] is one captured element of the rendered page: its geometry in
// slide-relative pixels, a snapshot of the computed style that matters for
// reproduction, and either leaf content (text or a raster image) or
// children. A [Slide] groups the top-level nodes of one slide container in
// document order together with the slide's raw background style.
//
// Trees are built once by the extractor, pruned with [Prune], and then read
// once by the synthesizer. Nothing mutates a node after extraction.
//
// # Debug output
//
// [ToDOT] renders a set of slides as a Graphviz digraph and [RenderSVG]
// lays it out with the embedded Graphviz engine. Both back the "scene"
// command.
package scene

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Rect is an axis-aligned box in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the box has no visible area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Translate returns r moved by (-dx, -dy), used to rebase page coordinates
// onto a slide origin.
func (r Rect) Translate(dx, dy float64) Rect {
	r.X -= dx
	r.Y -= dy
	return r
}

// Style is the subset of computed style captured for every node.
type Style struct {
	FontSizePx      float64 `json:"font_size_px"`
	Color           string  `json:"color,omitempty"`
	FontWeight      string  `json:"font_weight,omitempty"`
	TextAlign       string  `json:"text_align,omitempty"`
	BackgroundColor string  `json:"background_color,omitempty"`
	BorderRadius    string  `json:"border_radius,omitempty"`
	BoxShadow       string  `json:"box_shadow,omitempty"`
}

// Role classifies how a node is reproduced.
type Role int

const (
	// RoleGeneric nodes are modeled structurally: background, text, children.
	RoleGeneric Role = iota
	// RoleIcon nodes are captured as an enlarged isolated raster.
	RoleIcon
	// RoleCodeBlock nodes are captured in place as a raster.
	RoleCodeBlock
)

var roleNames = []string{"generic", "icon", "code-block"}

// String returns the lowercase role name.
func (r Role) String() string {
	if int(r) < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// IsRaster reports whether nodes of this role are captured as images.
func (r Role) IsRaster() bool { return r == RoleIcon || r == RoleCodeBlock }

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	i := slices.Index(roleNames, string(b))
	if i < 0 {
		return fmt.Errorf("unknown role %q", b)
	}
	*r = Role(i)
	return nil
}

// Node is one captured element.
//
// A node with RasterPath set is terminal: it has no children and no text.
type Node struct {
	ID            string   `json:"id"`
	Tag           string   `json:"tag"`
	Classes       []string `json:"classes,omitempty"`
	Box           Rect     `json:"box"`
	Style         Style    `json:"style"`
	Role          Role     `json:"role"`
	Text          string   `json:"text,omitempty"`
	RasterPath    string   `json:"raster_path,omitempty"`
	OwnBackground bool     `json:"own_background,omitempty"`
	Children      []*Node  `json:"children,omitempty"`
}

// HasClass reports whether the node carries class c.
func (n *Node) HasClass(c string) bool { return slices.Contains(n.Classes, c) }

// HasAnyClass reports whether the node carries any of the given classes.
func (n *Node) HasAnyClass(classes []string) bool {
	for _, c := range classes {
		if n.HasClass(c) {
			return true
		}
	}
	return false
}

// HasText reports whether the node owns direct text.
func (n *Node) HasText() bool { return n.Text != "" }

// IsRaster reports whether the node was captured as an image.
func (n *Node) IsRaster() bool { return n.RasterPath != "" }

// Visible reports whether the node contributes anything on its own or
// through its children. Invisible nodes are removed by [Prune].
func (n *Node) Visible() bool {
	return n.HasText() || n.IsRaster() || n.OwnBackground || len(n.Children) > 0
}

// Label returns a short human-readable description such as "div.card.title".
func (n *Node) Label() string {
	if len(n.Classes) == 0 {
		return n.Tag
	}
	return n.Tag + "." + strings.Join(n.Classes, ".")
}

// Slide is the extracted content of one slide container.
type Slide struct {
	Index      int     `json:"index"`
	Elements   []*Node `json:"elements"`
	Background string  `json:"background,omitempty"`
}

// Deck is the extracted content of one input document.
type Deck struct {
	Source string  `json:"source"`
	Slides []Slide `json:"slides"`
}

// Stats summarizes a deck for logging.
type Stats struct {
	Slides  int
	Nodes   int
	Texts   int
	Rasters int
	Fills   int
}

// Stats walks every slide and counts node kinds.
func (d *Deck) Stats() Stats {
	s := Stats{Slides: len(d.Slides)}
	for _, sl := range d.Slides {
		Walk(sl.Elements, func(n *Node, _ int) {
			s.Nodes++
			if n.HasText() {
				s.Texts++
			}
			if n.IsRaster() {
				s.Rasters++
			}
			if n.OwnBackground {
				s.Fills++
			}
		})
	}
	return s
}

// Walk visits nodes in pre-order, passing each node's depth.
func Walk(nodes []*Node, fn func(n *Node, depth int)) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	for _, n := range nodes {
		visit(n, 0)
	}
}

// Marshal encodes a deck as indented JSON.
func Marshal(d *Deck) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Unmarshal decodes a deck and prunes every slide so that hand-edited or
// older dumps obey the same invariants as fresh extractions.
func Unmarshal(data []byte) (*Deck, error) {
	var d Deck
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	for i := range d.Slides {
		d.Slides[i].Elements = PruneAll(d.Slides[i].Elements)
	}
	return &d, nil
}
