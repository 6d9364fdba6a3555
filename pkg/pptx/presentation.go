// Package pptx writes minimal PowerPoint (Office Open XML) decks.
//
// It covers what reconstructed HTML slides need: a fixed 16:9 page,
// solid and two-stop gradient slide backgrounds, rectangles with optional
// rounding and a drop shadow, pictures, and single-run text boxes.
//
//	p := pptx.New()
//	s := p.AddSlide()
//	s.SetBackgroundSolid(pptx.RGB{R: 250, G: 250, B: 250})
//	s.AddTextBox(pptx.Pixels(40), pptx.Pixels(40), pptx.Pixels(600), pptx.Pixels(60)).
//		SetText("Hello").SetFont(pptx.Font{SizePt: 32, Bold: true})
//	err := p.Save("out.pptx")
//
// Lengths are EMU (English Metric Units). [Pixels] converts CSS pixels at
// 96 DPI.
package pptx

import (
	"math"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// EMUPerPixel converts CSS pixels (96 DPI) to EMU.
	EMUPerPixel = 9525
	// EMUPerPoint converts points to EMU.
	EMUPerPoint = 12700

	// PageWidth and PageHeight are the fixed 13.333in x 7.5in page.
	PageWidth  int64 = 12192000
	PageHeight int64 = 6858000

	maxEMU = math.MaxInt64 / 2
)

// Pixels converts CSS pixels to EMU, truncating toward zero.
func Pixels(px float64) int64 {
	return clampEMU(px * EMUPerPixel)
}

// Points converts points to EMU.
func Points(pt float64) int64 {
	return clampEMU(pt * EMUPerPoint)
}

func clampEMU(v float64) int64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > float64(maxEMU):
		return maxEMU
	case v < -float64(maxEMU):
		return -maxEMU
	}
	return int64(v)
}

// Presentation is an in-memory deck. It is not safe for concurrent use;
// each conversion owns its own instance.
type Presentation struct {
	Title   string
	Creator string
	Created time.Time

	// Logger, when set, receives a warning for every picture left out
	// because its image could not be read.
	Logger *log.Logger

	slides []*Slide
}

// New creates an empty presentation.
func New() *Presentation {
	return &Presentation{Creator: "html2deck", Created: time.Now()}
}

// AddSlide appends a blank slide.
func (p *Presentation) AddSlide() *Slide {
	s := &Slide{}
	p.slides = append(p.slides, s)
	return s
}

// Slides returns the slides in order.
func (p *Presentation) Slides() []*Slide { return p.slides }

// Slide is one page of shapes drawn in insertion order.
type Slide struct {
	background *Fill
	shapes     []Shape
}

// SetBackgroundSolid fills the slide with one color.
func (s *Slide) SetBackgroundSolid(c RGB) {
	s.background = &Fill{Kind: FillSolid, Color: c}
}

// SetBackgroundGradient fills the slide with a two-stop linear gradient.
// angle is in degrees counter-clockwise from a left-to-right direction.
func (s *Slide) SetBackgroundGradient(angle float64, from, to RGB) {
	s.background = &Fill{Kind: FillGradient, Color: from, End: to, Angle: angle}
}

// Background returns the slide fill, or nil for the master default.
func (s *Slide) Background() *Fill { return s.background }

// Shapes returns the shapes in drawing order.
func (s *Slide) Shapes() []Shape { return s.shapes }

// AddRectangle adds a borderless rectangle.
func (s *Slide) AddRectangle(x, y, w, h int64) *AutoShape {
	a := &AutoShape{Frame: Frame{x, y, w, h}, Geometry: GeometryRect}
	s.shapes = append(s.shapes, a)
	return a
}

// AddRoundedRectangle adds a borderless rounded rectangle. adj is the
// corner size as a fraction of the short side in 1/100000 units.
func (s *Slide) AddRoundedRectangle(x, y, w, h int64, adj int) *AutoShape {
	a := &AutoShape{Frame: Frame{x, y, w, h}, Geometry: GeometryRoundRect, Adjust: adj}
	s.shapes = append(s.shapes, a)
	return a
}

// AddPicture adds an image read from path when the deck is written.
func (s *Slide) AddPicture(path string, x, y, w, h int64) *Picture {
	p := &Picture{Frame: Frame{x, y, w, h}, Path: path}
	s.shapes = append(s.shapes, p)
	return p
}

// AddTextBox adds an empty word-wrapping text box.
func (s *Slide) AddTextBox(x, y, w, h int64) *TextBox {
	t := &TextBox{Frame: Frame{x, y, w, h}, WordWrap: true}
	s.shapes = append(s.shapes, t)
	return t
}
