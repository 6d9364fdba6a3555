package extract

import (
	"context"
	"time"

	"github.com/matzehuels/html2deck/pkg/scene"
)

// Element is a handle to one element of a rendered page.
//
// Handles may go stale while a page is live; every method then returns an
// error and the extractor treats the element as absent.
type Element interface {
	// TagName returns the lowercase tag name.
	TagName(ctx context.Context) (string, error)
	// ClassAttribute returns the raw class attribute, or "" when absent.
	ClassAttribute(ctx context.Context) (string, error)
	// BoundingBox returns the border box in page pixels.
	BoundingBox(ctx context.Context) (scene.Rect, error)
	// ComputedStyle returns the computed values of the named properties.
	ComputedStyle(ctx context.Context, props ...string) (map[string]string, error)
	// ChildElements returns the direct element children in document order.
	ChildElements(ctx context.Context) ([]Element, error)
	// ChildContent returns the direct child nodes, text included.
	ChildContent(ctx context.Context) ([]Content, error)
	// QueryAll returns descendants matching a CSS selector.
	QueryAll(ctx context.Context, selector string) ([]Element, error)
}

// Surface is a rendering session able to load one document at a time.
type Surface interface {
	// Load replaces the current document with the local file at path.
	Load(ctx context.Context, path string) error
	// WaitForFonts blocks until web fonts are ready or timeout elapses.
	WaitForFonts(ctx context.Context, timeout time.Duration) error
	// QueryAll returns document elements matching a CSS selector.
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	// IsolatedCapture writes a PNG of el to dest, cropped to its visible
	// pixels. A scale above 1 captures an enlarged detached copy so that
	// neighbouring content cannot bleed into the image.
	IsolatedCapture(ctx context.Context, el Element, scale float64, dest string) error
	// Close releases the session.
	Close() error
}

// ContentKind distinguishes child node kinds for direct text extraction.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentElement
	ContentOther
)

// Content is one direct child node. For elements, Text is the element's
// full text content, used to size placeholders.
type Content struct {
	Kind ContentKind
	Tag  string
	Text string
}
