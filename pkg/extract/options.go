package extract

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

const (
	// DefaultSlideSelector locates slide containers.
	DefaultSlideSelector = ".slide"

	// DefaultHeaderSelector locates the header region inside a slide.
	DefaultHeaderSelector = ".slide-header"

	// DefaultContentSelector locates the content region inside a slide.
	DefaultContentSelector = ".slide-content"

	// DefaultIconScale enlarges icons before capture for a crisp raster.
	DefaultIconScale = 5.0

	// DefaultInlinePad is the number of blanks a padding tag contributes.
	DefaultInlinePad = 4
)

// DefaultIconClasses are the class names captured as icon rasters.
var DefaultIconClasses = []string{
	"material-icons",
	"toc-icon",
	"importance-icon",
	"limitation-icon",
	"check-icon",
	"partial-icon",
	"close-icon",
	"feature-icon",
	"section-icon",
	"api-icon",
	"config-icon",
	"case-icon",
	"component-icon",
	"mock-icon",
	"snapshot-icon",
	"resource-icon",
}

// DefaultCodeBlockClasses are the class names captured in place as rasters.
var DefaultCodeBlockClasses = []string{"code-block"}

// DefaultInlinePadTags are inline leaf markers replaced by fixed padding.
var DefaultInlinePadTags = []string{"i"}

// Options configures extraction.
type Options struct {
	SlideSelector    string   `json:"slide_selector,omitempty" toml:"slide_selector"`
	HeaderSelector   string   `json:"header_selector,omitempty" toml:"header_selector"`
	ContentSelector  string   `json:"content_selector,omitempty" toml:"content_selector"`
	IconClasses      []string `json:"icon_classes,omitempty" toml:"icon_classes"`
	CodeBlockClasses []string `json:"code_block_classes,omitempty" toml:"code_block_classes"`
	IconScale        float64  `json:"icon_scale,omitempty" toml:"icon_scale"`
	InlinePadTags    []string `json:"inline_pad_tags,omitempty" toml:"inline_pad_tags"`
	InlinePad        int      `json:"inline_pad,omitempty" toml:"inline_pad"`

	// RasterDir receives captured images. Defaults to the OS temp dir.
	RasterDir string `json:"-" toml:"-"`

	Logger *log.Logger `json:"-" toml:"-"`
}

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.SlideSelector == "" {
		o.SlideSelector = DefaultSlideSelector
	}
	if o.HeaderSelector == "" {
		o.HeaderSelector = DefaultHeaderSelector
	}
	if o.ContentSelector == "" {
		o.ContentSelector = DefaultContentSelector
	}
	if o.IconClasses == nil {
		o.IconClasses = DefaultIconClasses
	}
	if o.CodeBlockClasses == nil {
		o.CodeBlockClasses = DefaultCodeBlockClasses
	}
	if o.IconScale <= 0 {
		o.IconScale = DefaultIconScale
	}
	if o.InlinePadTags == nil {
		o.InlinePadTags = DefaultInlinePadTags
	}
	if o.InlinePad <= 0 {
		o.InlinePad = DefaultInlinePad
	}
	if o.RasterDir == "" {
		o.RasterDir = os.TempDir()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
