package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/matzehuels/html2deck/pkg/extract"
	"github.com/matzehuels/html2deck/pkg/scene"
)

// Element adapts a rod element to extract.Element.
type Element struct {
	el *rod.Element
}

var _ extract.Element = (*Element)(nil)

func wrapAll(els rod.Elements) []extract.Element {
	out := make([]extract.Element, len(els))
	for i, el := range els {
		out[i] = &Element{el: el}
	}
	return out
}

func (e *Element) eval(ctx context.Context, js string, args ...any) (*proto.RuntimeRemoteObject, error) {
	return e.el.Context(ctx).Eval(js, args...)
}

// TagName implements extract.Element.
func (e *Element) TagName(ctx context.Context) (string, error) {
	obj, err := e.eval(ctx, tagJS)
	if err != nil {
		return "", err
	}
	return obj.Value.Str(), nil
}

// ClassAttribute implements extract.Element.
func (e *Element) ClassAttribute(ctx context.Context) (string, error) {
	v, err := e.el.Context(ctx).Attribute("class")
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

// BoundingBox implements extract.Element.
func (e *Element) BoundingBox(ctx context.Context) (scene.Rect, error) {
	obj, err := e.eval(ctx, boxJS)
	if err != nil {
		return scene.Rect{}, err
	}
	var r scene.Rect
	if err := decode(obj.Value, &r); err != nil {
		return scene.Rect{}, fmt.Errorf("decode box: %w", err)
	}
	return r, nil
}

// ComputedStyle implements extract.Element.
func (e *Element) ComputedStyle(ctx context.Context, props ...string) (map[string]string, error) {
	obj, err := e.eval(ctx, styleJS, props)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(props))
	if err := decode(obj.Value, &out); err != nil {
		return nil, fmt.Errorf("decode style: %w", err)
	}
	return out, nil
}

// ChildElements implements extract.Element.
func (e *Element) ChildElements(ctx context.Context) ([]extract.Element, error) {
	els, err := e.el.Context(ctx).Elements(":scope > *")
	if err != nil {
		return nil, err
	}
	return wrapAll(els), nil
}

// ChildContent implements extract.Element.
func (e *Element) ChildContent(ctx context.Context) ([]extract.Content, error) {
	obj, err := e.eval(ctx, contentJS)
	if err != nil {
		return nil, err
	}
	var items []contentItem
	if err := decode(obj.Value, &items); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return toContent(items), nil
}

// QueryAll implements extract.Element.
func (e *Element) QueryAll(ctx context.Context, selector string) ([]extract.Element, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapAll(els), nil
}

// contentItem is the page-side shape produced by contentJS.
type contentItem struct {
	Kind string `json:"kind"`
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

func toContent(items []contentItem) []extract.Content {
	out := make([]extract.Content, len(items))
	for i, it := range items {
		c := extract.Content{Kind: extract.ContentOther, Tag: it.Tag, Text: it.Text}
		switch it.Kind {
		case "text":
			c.Kind = extract.ContentText
		case "element":
			c.Kind = extract.ContentElement
		}
		out[i] = c
	}
	return out
}
