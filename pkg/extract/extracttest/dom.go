// Package extracttest provides an in-memory rendering surface for tests.
//
// Documents are trees of [Node] values with fixed boxes and styles. The
// [Surface] implements extract.Surface over them, supports simple ".class"
// and tag selectors, and writes small PNG files for captures.
package extracttest

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/html2deck/pkg/extract"
	"github.com/matzehuels/html2deck/pkg/scene"
)

// ErrStale is returned by every method of a stale element.
var ErrStale = errors.New("stale element reference")

// Node is one element of a fake document.
type Node struct {
	Tag      string
	Class    string
	Box      scene.Rect
	Style    map[string]string
	Text     string // own text, placed before the children
	Children []*Node

	// Content overrides the derived direct content when set.
	Content []extract.Content
	// Stale makes every query on this element fail.
	Stale bool
	// FailCapture makes captures of this element fail.
	FailCapture bool
}

// El is a convenience constructor.
func El(tag, class string, box scene.Rect, children ...*Node) *Node {
	return &Node{Tag: tag, Class: class, Box: box, Children: children}
}

// WithStyle sets computed style properties and returns n.
func (n *Node) WithStyle(kv ...string) *Node {
	if n.Style == nil {
		n.Style = make(map[string]string)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Style[kv[i]] = kv[i+1]
	}
	return n
}

// WithText sets own text and returns n.
func (n *Node) WithText(s string) *Node {
	n.Text = s
	return n
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	var b strings.Builder
	b.WriteString(n.Text)
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

func (n *Node) matches(selector string) bool {
	if cls, ok := strings.CutPrefix(selector, "."); ok {
		return slices.Contains(strings.Fields(n.Class), cls)
	}
	return strings.EqualFold(n.Tag, selector)
}

func (n *Node) query(selector string, out []*Node) []*Node {
	for _, c := range n.Children {
		if c.matches(selector) {
			out = append(out, c)
		}
		out = c.query(selector, out)
	}
	return out
}

// Surface is an in-memory extract.Surface.
type Surface struct {
	// Documents maps load paths to document roots. The root itself is the
	// <body>; selectors search its descendants.
	Documents map[string]*Node
	// LoadErr, when set, fails every Load.
	LoadErr error
	// FontErr, when set, fails every WaitForFonts.
	FontErr error

	mu       sync.Mutex
	current  *Node
	loads    []string
	captures []string
	closed   bool
}

// NewSurface creates a surface serving docs.
func NewSurface(docs map[string]*Node) *Surface {
	return &Surface{Documents: docs}
}

// Load implements extract.Surface.
func (s *Surface) Load(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return s.LoadErr
	}
	doc, ok := s.Documents[path]
	if !ok {
		doc, ok = s.Documents[filepath.Base(path)]
	}
	if !ok {
		return fmt.Errorf("no document for %s", path)
	}
	s.current = doc
	s.loads = append(s.loads, path)
	return nil
}

// WaitForFonts implements extract.Surface.
func (s *Surface) WaitForFonts(ctx context.Context, timeout time.Duration) error {
	return s.FontErr
}

// QueryAll implements extract.Surface.
func (s *Surface) QueryAll(ctx context.Context, selector string) ([]extract.Element, error) {
	s.mu.Lock()
	doc := s.current
	s.mu.Unlock()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}
	return s.wrap(doc.query(selector, nil)), nil
}

// IsolatedCapture implements extract.Surface by writing a small opaque PNG.
func (s *Surface) IsolatedCapture(ctx context.Context, el extract.Element, scale float64, dest string) error {
	e, ok := el.(*Element)
	if !ok {
		return fmt.Errorf("foreign element %T", el)
	}
	if e.node.Stale || e.node.FailCapture {
		return errors.New("capture failed")
	}
	w := max(1, int(e.node.Box.Width*scale))
	h := max(1, int(e.node.Box.Height*scale))
	img := imaging.New(w, h, color.NRGBA{R: 20, G: 120, B: 220, A: 255})
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if err := imaging.Save(img, dest); err != nil {
		return err
	}
	s.mu.Lock()
	s.captures = append(s.captures, dest)
	s.mu.Unlock()
	return nil
}

// Close implements extract.Surface.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Loads returns the paths loaded so far.
func (s *Surface) Loads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.loads)
}

// Captures returns the raster paths written so far.
func (s *Surface) Captures() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.captures)
}

// Closed reports whether Close was called.
func (s *Surface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Surface) wrap(nodes []*Node) []extract.Element {
	out := make([]extract.Element, len(nodes))
	for i, n := range nodes {
		out[i] = &Element{node: n, surface: s}
	}
	return out
}

// Element is a handle to a fake node.
type Element struct {
	node    *Node
	surface *Surface
}

// Wrap returns a handle to n served by s.
func (s *Surface) Wrap(n *Node) *Element { return &Element{node: n, surface: s} }

func (e *Element) check() error {
	if e.node.Stale {
		return ErrStale
	}
	return nil
}

// TagName implements extract.Element.
func (e *Element) TagName(ctx context.Context) (string, error) {
	if err := e.check(); err != nil {
		return "", err
	}
	return strings.ToLower(e.node.Tag), nil
}

// ClassAttribute implements extract.Element.
func (e *Element) ClassAttribute(ctx context.Context) (string, error) {
	if err := e.check(); err != nil {
		return "", err
	}
	return e.node.Class, nil
}

// BoundingBox implements extract.Element.
func (e *Element) BoundingBox(ctx context.Context) (scene.Rect, error) {
	if err := e.check(); err != nil {
		return scene.Rect{}, err
	}
	return e.node.Box, nil
}

// ComputedStyle implements extract.Element. Unset properties report the
// browser defaults that matter to extraction.
func (e *Element) ComputedStyle(ctx context.Context, props ...string) (map[string]string, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(props))
	for _, p := range props {
		if v, ok := e.node.Style[p]; ok {
			out[p] = v
			continue
		}
		out[p] = defaultStyle[p]
	}
	return out, nil
}

var defaultStyle = map[string]string{
	"font-size":        "16px",
	"color":            "rgb(0, 0, 0)",
	"font-weight":      "400",
	"text-align":       "start",
	"background-color": "rgba(0, 0, 0, 0)",
	"background":       "rgba(0, 0, 0, 0) none repeat scroll 0% 0% / auto padding-box border-box",
	"border-radius":    "0px",
	"box-shadow":       "none",
}

// ChildElements implements extract.Element.
func (e *Element) ChildElements(ctx context.Context) ([]extract.Element, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	return e.surface.wrap(e.node.Children), nil
}

// ChildContent implements extract.Element.
func (e *Element) ChildContent(ctx context.Context) ([]extract.Content, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	if e.node.Content != nil {
		return e.node.Content, nil
	}
	var out []extract.Content
	if e.node.Text != "" {
		out = append(out, extract.Content{Kind: extract.ContentText, Text: e.node.Text})
	}
	for _, c := range e.node.Children {
		out = append(out, extract.Content{Kind: extract.ContentElement, Tag: strings.ToLower(c.Tag), Text: c.TextContent()})
	}
	return out, nil
}

// QueryAll implements extract.Element.
func (e *Element) QueryAll(ctx context.Context, selector string) ([]extract.Element, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	return e.surface.wrap(e.node.query(selector, nil)), nil
}
