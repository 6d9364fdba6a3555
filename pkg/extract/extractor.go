// Package extract walks a rendered page and builds the scene graph.
//
// The [Extractor] reads slide containers from a [Surface], then descends
// through each slide's element tree. Every element becomes a
// [scene.Node] carrying its slide-relative box, a style snapshot and either
// direct text, a raster capture or children. Icon and code-block elements
// are captured as images and not descended into. Invisible subtrees are
// pruned before they are returned.
//
// Failures below the slide level never abort extraction: a stale handle, an
// unreadable property or a failed capture only removes the affected node.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/html2deck/pkg/scene"
	"github.com/matzehuels/html2deck/pkg/style"
)

// Style properties captured for every node, in scene.Style field order.
const (
	propFontSize        = "font-size"
	propColor           = "color"
	propFontWeight      = "font-weight"
	propTextAlign       = "text-align"
	propBackgroundColor = "background-color"
	propBorderRadius    = "border-radius"
	propBoxShadow       = "box-shadow"
	propBackground      = "background"
)

var snapshotProps = []string{
	propFontSize, propColor, propFontWeight, propTextAlign,
	propBackgroundColor, propBorderRadius, propBoxShadow,
}

// Extractor builds scene nodes from a rendering surface.
// It holds no per-document state and may be reused across loads.
type Extractor struct {
	surface Surface
	opts    Options
	roles   *Classifier
	text    textModel
	logger  *log.Logger
}

// New creates an extractor over surface.
func New(surface Surface, opts Options) *Extractor {
	opts.SetDefaults()
	return &Extractor{
		surface: surface,
		opts:    opts,
		roles:   NewClassifier(opts.IconClasses, opts.CodeBlockClasses),
		text:    newTextModel(opts.InlinePadTags, opts.InlinePad),
		logger:  opts.Logger,
	}
}

// Frame locates a subtree within its slide.
type Frame struct {
	Slide   int     // zero-based slide index
	OriginX float64 // slide container left edge in page pixels
	OriginY float64 // slide container top edge in page pixels
	Path    string  // pre-order tree path of the subtree root, e.g. "1.0.3"
}

func (f Frame) child(i int) Frame {
	f.Path = f.Path + "." + strconv.Itoa(i)
	return f
}

// Extract builds the pruned scene subtree rooted at el. inherited is the
// effective background color of el's ancestors. It returns nil when the
// element is unreadable, not laid out, or contributes nothing visible.
func (x *Extractor) Extract(ctx context.Context, el Element, inherited style.Color, f Frame) *scene.Node {
	return scene.Prune(x.build(ctx, el, inherited, f))
}

// build captures el and its descendants without pruning.
func (x *Extractor) build(ctx context.Context, el Element, inherited style.Color, f Frame) *scene.Node {
	if ctx.Err() != nil {
		return nil
	}

	tag, err := el.TagName(ctx)
	if err != nil {
		x.logger.Debug("skipping unreadable element", "path", f.Path, "err", err)
		return nil
	}
	classAttr, err := el.ClassAttribute(ctx)
	if err != nil {
		x.logger.Debug("skipping unreadable element", "path", f.Path, "err", err)
		return nil
	}

	box, err := el.BoundingBox(ctx)
	if err != nil || box.Empty() {
		return nil
	}

	props, err := el.ComputedStyle(ctx, snapshotProps...)
	if err != nil {
		x.logger.Debug("skipping element without style", "path", f.Path, "tag", tag, "err", err)
		return nil
	}

	n := &scene.Node{
		ID:      f.Path,
		Tag:     strings.ToLower(tag),
		Classes: SplitClasses(classAttr),
		Box:     box.Translate(f.OriginX, f.OriginY),
		Style:   snapshot(props),
	}
	n.Role = x.roles.Classify(n.Classes)

	if n.Role.IsRaster() {
		x.capture(ctx, el, n, f)
		return n
	}

	if items, err := el.ChildContent(ctx); err == nil {
		n.Text = x.text.directText(items)
	} else {
		x.logger.Debug("direct text unavailable", "path", f.Path, "err", err)
	}

	bg := style.ParseColor(n.Style.BackgroundColor)
	n.OwnBackground = !bg.IsTransparent() && bg != inherited
	pass := inherited
	if n.OwnBackground {
		pass = bg
	}

	children, err := el.ChildElements(ctx)
	if err != nil {
		x.logger.Debug("children unavailable", "path", f.Path, "err", err)
		return n
	}
	for i, child := range children {
		if c := x.build(ctx, child, pass, f.child(i)); c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// capture records a raster for icon and code-block nodes. On failure the
// node is left without raster so pruning discards it.
func (x *Extractor) capture(ctx context.Context, el Element, n *scene.Node, f Frame) {
	scale := 1.0
	if n.Role == scene.RoleIcon {
		scale = x.opts.IconScale
	}
	dest := filepath.Join(x.opts.RasterDir, rasterName(f))
	if err := x.surface.IsolatedCapture(ctx, el, scale, dest); err != nil {
		x.logger.Debug("raster capture failed", "path", f.Path, "role", n.Role, "err", err)
		return
	}
	n.RasterPath = dest
}

// rasterName derives a stable file name from the slide index and tree path.
func rasterName(f Frame) string {
	return fmt.Sprintf("slide%d_%s.png", f.Slide+1, strings.ReplaceAll(f.Path, ".", "-"))
}

func snapshot(props map[string]string) scene.Style {
	return scene.Style{
		FontSizePx:      style.ParsePixels(props[propFontSize]),
		Color:           props[propColor],
		FontWeight:      props[propFontWeight],
		TextAlign:       props[propTextAlign],
		BackgroundColor: props[propBackgroundColor],
		BorderRadius:    props[propBorderRadius],
		BoxShadow:       props[propBoxShadow],
	}
}
