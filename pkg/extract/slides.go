package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/html2deck/pkg/scene"
	"github.com/matzehuels/html2deck/pkg/style"
)

// Slides extracts every slide container of the loaded document in document
// order. It fails only when the slide containers themselves cannot be
// listed; problems inside a slide shrink that slide instead.
func (x *Extractor) Slides(ctx context.Context) ([]scene.Slide, error) {
	containers, err := x.surface.QueryAll(ctx, x.opts.SlideSelector)
	if err != nil {
		return nil, fmt.Errorf("find slides %q: %w", x.opts.SlideSelector, err)
	}

	slides := make([]scene.Slide, 0, len(containers))
	for i, c := range containers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slides = append(slides, x.Slide(ctx, c, i))
	}
	return slides, nil
}

// Slide extracts one slide container. The header and content regions are
// walked when present, otherwise the container itself; each top-level child
// of a region is extracted as its own subtree.
func (x *Extractor) Slide(ctx context.Context, container Element, index int) scene.Slide {
	s := scene.Slide{Index: index, Background: x.background(ctx, container)}

	var originX, originY float64
	if box, err := container.BoundingBox(ctx); err == nil {
		originX, originY = box.X, box.Y
	} else {
		x.logger.Debug("slide box unavailable", "slide", index+1, "err", err)
	}

	for r, region := range x.regions(ctx, container) {
		children, err := region.ChildElements(ctx)
		if err != nil {
			x.logger.Debug("region children unavailable", "slide", index+1, "region", r, "err", err)
			continue
		}
		for j, child := range children {
			f := Frame{
				Slide:   index,
				OriginX: originX,
				OriginY: originY,
				Path:    strconv.Itoa(r) + "." + strconv.Itoa(j),
			}
			if n := x.Extract(ctx, child, style.Transparent, f); n != nil {
				s.Elements = append(s.Elements, n)
			}
		}
	}

	x.logger.Debug("extracted slide", "slide", index+1, "elements", len(s.Elements))
	return s
}

// regions returns the header and content regions, or the container itself
// when it has neither.
func (x *Extractor) regions(ctx context.Context, container Element) []Element {
	var out []Element
	for _, sel := range []string{x.opts.HeaderSelector, x.opts.ContentSelector} {
		found, err := container.QueryAll(ctx, sel)
		if err == nil && len(found) > 0 {
			out = append(out, found[0])
		}
	}
	if len(out) == 0 {
		return []Element{container}
	}
	return out
}

// background reads the slide's background style, preferring the composite
// background property and falling back to background-color. "none" and
// "transparent" mean no custom background.
func (x *Extractor) background(ctx context.Context, container Element) string {
	props, err := container.ComputedStyle(ctx, propBackground, propBackgroundColor)
	if err != nil {
		return ""
	}
	for _, v := range []string{props[propBackground], props[propBackgroundColor]} {
		if v = strings.TrimSpace(v); v != "" && !isNoBackground(v) {
			return v
		}
	}
	return ""
}

func isNoBackground(v string) bool {
	switch strings.ToLower(v) {
	case "none", "transparent", "initial", "inherit", "unset":
		return true
	}
	return false
}
