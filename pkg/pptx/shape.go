package pptx

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an opaque color.
type RGB struct{ R, G, B uint8 }

// Black is the default text color.
var Black = RGB{}

// Hex returns the color as six uppercase hex digits, as srgbClr expects.
func (c RGB) Hex() string {
	cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	return strings.ToUpper(strings.TrimPrefix(cf.Hex(), "#"))
}

func (c RGB) String() string { return "#" + c.Hex() }

// FillKind selects how a fill is drawn.
type FillKind int

const (
	FillSolid FillKind = iota
	FillGradient
)

// Fill is a solid color or a two-stop linear gradient.
type Fill struct {
	Kind  FillKind
	Color RGB     // solid color, or first stop
	End   RGB     // last stop
	Angle float64 // gradient direction, degrees counter-clockwise
}

// Frame positions a shape in EMU.
type Frame struct {
	X, Y, Width, Height int64
}

// Shape is anything placed on a slide.
type Shape interface {
	Bounds() Frame
	kind() string
}

// Bounds returns the frame.
func (f Frame) Bounds() Frame { return f }

// Geometry is a preset shape geometry.
type Geometry string

const (
	GeometryRect      Geometry = "rect"
	GeometryRoundRect Geometry = "roundRect"
)

// Shadow is an outer drop shadow.
type Shadow struct {
	BlurEMU   int64
	DistEMU   int64
	Direction float64 // degrees clockwise, 90 points down
	Color     RGB
	Alpha     float64 // opacity in [0,1]
}

// AutoShape is a filled preset geometry with no outline.
type AutoShape struct {
	Frame
	Geometry Geometry
	Adjust   int // roundRect corner adjustment, 1/100000 of the short side
	Fill     *Fill
	Shadow   *Shadow
}

func (*AutoShape) kind() string { return "shape" }

// SetFill sets a solid fill and returns a.
func (a *AutoShape) SetFill(c RGB) *AutoShape {
	a.Fill = &Fill{Kind: FillSolid, Color: c}
	return a
}

// SetShadow attaches a drop shadow and returns a.
func (a *AutoShape) SetShadow(s Shadow) *AutoShape {
	a.Shadow = &s
	return a
}

// Picture is an image stretched over its frame.
type Picture struct {
	Frame
	Path string
}

func (*Picture) kind() string { return "picture" }

// Alignment is a paragraph alignment.
type Alignment string

const (
	AlignLeft    Alignment = "l"
	AlignCenter  Alignment = "ctr"
	AlignRight   Alignment = "r"
	AlignJustify Alignment = "just"
)

// Font styles a text run.
type Font struct {
	SizePt int
	Color  RGB
	Bold   bool
}

// TextBox holds one run of text. Newlines become line breaks.
type TextBox struct {
	Frame
	WordWrap bool
	Text     string
	Font     Font
	Align    Alignment
}

func (*TextBox) kind() string { return "text" }

// SetText sets the text and returns t.
func (t *TextBox) SetText(s string) *TextBox {
	t.Text = s
	return t
}

// SetFont sets the run font and returns t.
func (t *TextBox) SetFont(f Font) *TextBox {
	t.Font = f
	return t
}

// SetAlign sets the paragraph alignment and returns t.
func (t *TextBox) SetAlign(a Alignment) *TextBox {
	t.Align = a
	return t
}

func (f Frame) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", f.X, f.Y, f.Width, f.Height)
}
