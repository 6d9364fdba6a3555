// Package synth turns extracted scene graphs into presentation shapes.
//
// A [Renderer] walks each slide's nodes in pre-order. For every node it
// emits, in this order, the node's own background rectangle, its leaf
// content (a picture for raster nodes, a text box for text nodes), and then
// its children. Parents therefore never paint over their descendants.
//
// Colors with partial alpha are flattened over white because the output
// format's transparency is not relied upon. Text boxes are widened by a
// fixed heuristic so that small font metric differences between the
// browser and the presentation viewer do not introduce line wraps.
package synth

import (
	"io"

	"github.com/charmbracelet/log"
)

// Defaults for [Options].
const (
	DefaultSlideWidthPx      = 1280.0
	DefaultRightMarginPx     = 40.0
	DefaultWidthFactor       = 1.25
	DefaultFontScale         = 0.75
	DefaultMinPicturePx      = 20.0
	DefaultMaxCornerFraction = 0.5
)

// DefaultFullWidthClasses mark text that should run to the right margin.
var DefaultFullWidthClasses = []string{"title", "subtitle", "section-title", "section-heading", "full-width"}

// Shadow parameters used for any element with a box-shadow.
const (
	shadowBlurPx    = 4.0
	shadowDistPx    = 2.0
	shadowDirection = 90.0
	shadowAlpha     = 0.2
)

// Options tunes the layout heuristics.
type Options struct {
	SlideWidthPx      float64  `json:"slide_width_px,omitempty" toml:"slide_width_px"`
	RightMarginPx     float64  `json:"right_margin_px,omitempty" toml:"right_margin_px"`
	WidthFactor       float64  `json:"width_factor,omitempty" toml:"width_factor"`
	FontScale         float64  `json:"font_scale,omitempty" toml:"font_scale"`
	FullWidthClasses  []string `json:"full_width_classes,omitempty" toml:"full_width_classes"`
	MinPicturePx      float64  `json:"min_picture_px,omitempty" toml:"min_picture_px"`
	MaxCornerFraction float64  `json:"max_corner_fraction,omitempty" toml:"max_corner_fraction"`

	Logger *log.Logger `json:"-" toml:"-"`
}

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.SlideWidthPx <= 0 {
		o.SlideWidthPx = DefaultSlideWidthPx
	}
	if o.RightMarginPx <= 0 {
		o.RightMarginPx = DefaultRightMarginPx
	}
	if o.WidthFactor <= 0 {
		o.WidthFactor = DefaultWidthFactor
	}
	if o.FontScale <= 0 {
		o.FontScale = DefaultFontScale
	}
	if o.FullWidthClasses == nil {
		o.FullWidthClasses = DefaultFullWidthClasses
	}
	if o.MinPicturePx <= 0 {
		o.MinPicturePx = DefaultMinPicturePx
	}
	if o.MaxCornerFraction <= 0 {
		o.MaxCornerFraction = DefaultMaxCornerFraction
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
