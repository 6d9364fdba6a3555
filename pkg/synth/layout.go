package synth

import (
	"math"
	"strings"

	"github.com/matzehuels/html2deck/pkg/pptx"
	"github.com/matzehuels/html2deck/pkg/scene"
	"github.com/matzehuels/html2deck/pkg/style"
)

// FontPoints maps a CSS pixel font size to whole points, never below 1.
func FontPoints(px, scale float64) int {
	return max(1, int(px*scale))
}

// CornerAdjust expresses a corner radius as the roundRect adjustment: the
// radius as a fraction of the shape's short side, clamped to
// [0, maxFraction] and scaled to 1/100000 units.
func CornerAdjust(radiusPx, width, height, maxFraction float64) int {
	short := math.Min(width, height)
	if short <= 0 || radiusPx <= 0 {
		return 0
	}
	f := math.Min(radiusPx/short, maxFraction)
	return int(math.Round(f * 100000))
}

// TextFrame returns the widened text box for n and the paragraph alignment
// to apply. n.Box is copied, never modified.
//
// Full-width text runs to the right margin but keeps at least its measured
// width. Other text is widened by the width factor; centered and
// right-aligned boxes are shifted so their text anchor stays put.
func (o Options) TextFrame(n *scene.Node) (scene.Rect, pptx.Alignment) {
	box := n.Box
	if n.HasAnyClass(o.FullWidthClasses) {
		box.Width = math.Max(box.Width, o.SlideWidthPx-box.X-o.RightMarginPx)
		return box, ""
	}

	grown := box.Width * o.WidthFactor
	align := alignment(n.Style.TextAlign)
	switch align {
	case pptx.AlignCenter:
		box.X -= (grown - box.Width) / 2
	case pptx.AlignRight:
		box.X -= grown - box.Width
	}
	box.Width = grown
	return box, align
}

func alignment(textAlign string) pptx.Alignment {
	switch strings.ToLower(strings.TrimSpace(textAlign)) {
	case "center", "-webkit-center":
		return pptx.AlignCenter
	case "right", "-webkit-right":
		return pptx.AlignRight
	case "justify":
		return pptx.AlignJustify
	}
	return ""
}

// PictureSize converts a raster box to EMU, substituting the minimum size
// for any dimension that would truncate to zero.
func (o Options) PictureSize(box scene.Rect) (int64, int64) {
	w, h := pptx.Pixels(box.Width), pptx.Pixels(box.Height)
	if w <= 0 {
		w = pptx.Pixels(o.MinPicturePx)
	}
	if h <= 0 {
		h = pptx.Pixels(o.MinPicturePx)
	}
	return w, h
}

// rgb drops alpha. Callers flatten first where alpha matters.
func rgb(c style.Color) pptx.RGB {
	return pptx.RGB{R: c.R, G: c.G, B: c.B}
}
