package synth

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/html2deck/pkg/pptx"
	"github.com/matzehuels/html2deck/pkg/scene"
	"github.com/matzehuels/html2deck/pkg/style"
)

// Renderer emits shapes for scene slides. It is stateless apart from its
// options and may be shared; each call writes into the presentation it is
// given.
type Renderer struct {
	opts   Options
	logger *log.Logger
}

// New creates a renderer.
func New(opts Options) *Renderer {
	opts.SetDefaults()
	return &Renderer{opts: opts, logger: opts.Logger}
}

// Options returns the effective options.
func (r *Renderer) Options() Options { return r.opts }

// Render builds a new presentation with one page per slide.
func (r *Renderer) Render(slides []scene.Slide) *pptx.Presentation {
	p := pptx.New()
	p.Logger = r.logger
	for _, s := range slides {
		r.RenderSlide(p.AddSlide(), s)
	}
	return p
}

// RenderSlide fills out with the background and elements of s.
func (r *Renderer) RenderSlide(out *pptx.Slide, s scene.Slide) {
	r.applyBackground(out, s)
	for _, n := range s.Elements {
		r.renderNode(out, n)
	}
}

func (r *Renderer) applyBackground(out *pptx.Slide, s scene.Slide) {
	bg := ResolveBackground(s.Background)
	switch bg.Kind {
	case BackgroundGradient:
		if bg.DroppedStops > 0 {
			r.logger.Warn("gradient has more than two stops, keeping first and last",
				"slide", s.Index+1, "dropped", bg.DroppedStops)
		}
		out.SetBackgroundGradient(bg.Angle, rgb(bg.Color), rgb(bg.End))
	case BackgroundSolid:
		out.SetBackgroundSolid(rgb(bg.Color))
	}
}

// renderNode draws n's background, then its raster or text, then its
// children.
func (r *Renderer) renderNode(out *pptx.Slide, n *scene.Node) {
	if n.OwnBackground {
		r.backgroundShape(out, n)
	}

	switch {
	case n.IsRaster():
		r.picture(out, n)
	case n.HasText():
		r.textBox(out, n)
	}

	for _, c := range n.Children {
		r.renderNode(out, c)
	}
}

func (r *Renderer) backgroundShape(out *pptx.Slide, n *scene.Node) {
	c := style.ParseColor(n.Style.BackgroundColor)
	if c.IsTransparent() {
		return
	}
	b := n.Box
	x, y := pptx.Pixels(b.X), pptx.Pixels(b.Y)
	w, h := pptx.Pixels(b.Width), pptx.Pixels(b.Height)

	var shape *pptx.AutoShape
	if radius := style.ParseCornerRadius(n.Style.BorderRadius); radius > 0 {
		adj := CornerAdjust(radius, b.Width, b.Height, r.opts.MaxCornerFraction)
		shape = out.AddRoundedRectangle(x, y, w, h, adj)
	} else {
		shape = out.AddRectangle(x, y, w, h)
	}
	shape.SetFill(rgb(c.Flatten()))

	if style.HasShadow(n.Style.BoxShadow) {
		shape.SetShadow(pptx.Shadow{
			BlurEMU:   pptx.Pixels(shadowBlurPx),
			DistEMU:   pptx.Pixels(shadowDistPx),
			Direction: shadowDirection,
			Color:     pptx.Black,
			Alpha:     shadowAlpha,
		})
	}
}

func (r *Renderer) picture(out *pptx.Slide, n *scene.Node) {
	w, h := r.opts.PictureSize(n.Box)
	out.AddPicture(n.RasterPath, pptx.Pixels(n.Box.X), pptx.Pixels(n.Box.Y), w, h)
}

func (r *Renderer) textBox(out *pptx.Slide, n *scene.Node) {
	box, align := r.opts.TextFrame(n)
	out.AddTextBox(pptx.Pixels(box.X), pptx.Pixels(box.Y), pptx.Pixels(box.Width), pptx.Pixels(box.Height)).
		SetText(n.Text).
		SetAlign(align).
		SetFont(pptx.Font{
			SizePt: FontPoints(n.Style.FontSizePx, r.opts.FontScale),
			Color:  rgb(style.ParseColor(n.Style.Color)),
			Bold:   style.IsBold(n.Style.FontWeight),
		})
}
