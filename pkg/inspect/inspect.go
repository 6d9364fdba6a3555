// Package inspect reads slide documents statically, without a browser.
//
// [File] parses the HTML with golang.org/x/net/html and answers structural
// questions through XPath (github.com/antchfx/htmlquery): how many slide
// containers there are, which regions and icon or code-block elements
// they hold, and which local files the document pulls in. The asset list
// feeds the conversion cache key, so editing a stylesheet invalidates a
// cached deck just like editing the document.
package inspect

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/matzehuels/html2deck/pkg/errors"
	"github.com/matzehuels/html2deck/pkg/extract"
	"github.com/matzehuels/html2deck/pkg/scene"
)

// Asset kinds.
const (
	AssetStylesheet = "stylesheet"
	AssetScript     = "script"
	AssetImage      = "image"
	AssetURL        = "url" // url() inside inline CSS
)

// Asset is a local file referenced by the document.
type Asset struct {
	Kind   string `json:"kind"`
	Ref    string `json:"ref"`  // as written in the document
	Path   string `json:"path"` // resolved against the document directory
	Exists bool   `json:"exists"`
}

// SlideOutline summarizes one slide container.
type SlideOutline struct {
	Index      int    `json:"index"`
	Heading    string `json:"heading,omitempty"`
	HasHeader  bool   `json:"has_header"`
	HasContent bool   `json:"has_content"`
	Elements   int    `json:"elements"`
	Icons      int    `json:"icons"`
	CodeBlocks int    `json:"code_blocks"`
}

// Report is the static outline of one document.
type Report struct {
	Path   string         `json:"path"`
	Title  string         `json:"title,omitempty"`
	Slides []SlideOutline `json:"slides"`
	Assets []Asset        `json:"assets,omitempty"`
}

// AssetPaths returns the resolved paths of every local asset in document
// order.
func (r *Report) AssetPaths() []string { return AssetPaths(r.Assets) }

// AssetPaths returns the resolved path of each asset.
func AssetPaths(assets []Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.Path
	}
	return out
}

// File parses the document at path. Selectors and classes come from opts
// after defaults are applied.
func File(path string, opts extract.Options) (*Report, error) {
	doc, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	return Document(doc, path, opts)
}

// FileAssets lists the local files the document at path references. Unlike
// [File] it needs no selectors, so it works for any slide markup.
func FileAssets(path string) ([]Asset, error) {
	doc, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	return assets(doc, filepath.Dir(path)), nil
}

func parseFile(path string) (*html.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	return doc, nil
}

// Document inspects an already parsed document. path locates relative
// asset references.
func Document(doc *html.Node, path string, opts extract.Options) (*Report, error) {
	opts.SetDefaults()

	slideX, err := XPath(opts.SlideSelector)
	if err != nil {
		return nil, err
	}
	headerX, err := XPath(opts.HeaderSelector)
	if err != nil {
		return nil, err
	}
	contentX, err := XPath(opts.ContentSelector)
	if err != nil {
		return nil, err
	}

	r := &Report{Path: path}
	if t := htmlquery.FindOne(doc, "//title"); t != nil {
		r.Title = strings.TrimSpace(htmlquery.InnerText(t))
	}

	roles := extract.NewClassifier(opts.IconClasses, opts.CodeBlockClasses)
	slides, err := htmlquery.QueryAll(doc, slideX)
	if err != nil {
		return nil, fmt.Errorf("query slides: %w", err)
	}
	for i, s := range slides {
		r.Slides = append(r.Slides, outline(s, i, headerX, contentX, roles))
	}

	r.Assets = assets(doc, filepath.Dir(path))
	return r, nil
}

func outline(s *html.Node, index int, headerX, contentX string, roles *extract.Classifier) SlideOutline {
	o := SlideOutline{Index: index}
	o.HasHeader = htmlquery.FindOne(s, headerX) != nil
	o.HasContent = htmlquery.FindOne(s, contentX) != nil
	if h := htmlquery.FindOne(s, ".//*[self::h1 or self::h2 or self::h3]"); h != nil {
		o.Heading = strings.Join(strings.Fields(htmlquery.InnerText(h)), " ")
	}

	var walk func(n *html.Node, inRaster bool)
	walk = func(n *html.Node, inRaster bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			o.Elements++
			if inRaster {
				walk(c, true)
				continue
			}
			switch roles.Classify(extract.SplitClasses(htmlquery.SelectAttr(c, "class"))) {
			case scene.RoleIcon:
				o.Icons++
				walk(c, true)
			case scene.RoleCodeBlock:
				o.CodeBlocks++
				walk(c, true)
			default:
				walk(c, false)
			}
		}
	}
	walk(s, false)
	return o
}

var cssURLRe = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)

// assets lists local references from link, script and img elements and
// from url() in style elements and attributes. Duplicates are dropped.
func assets(doc *html.Node, dir string) []Asset {
	var out []Asset
	seen := make(map[string]bool)
	add := func(kind, ref string) {
		p, ok := localPath(ref, dir)
		if !ok || seen[p] {
			return
		}
		seen[p] = true
		_, err := os.Stat(p)
		out = append(out, Asset{Kind: kind, Ref: ref, Path: p, Exists: err == nil})
	}

	for _, n := range htmlquery.Find(doc, `//link[@href]`) {
		rel := strings.ToLower(htmlquery.SelectAttr(n, "rel"))
		if slices.Contains(strings.Fields(rel), "stylesheet") {
			add(AssetStylesheet, htmlquery.SelectAttr(n, "href"))
		}
	}
	for _, n := range htmlquery.Find(doc, `//script[@src]`) {
		add(AssetScript, htmlquery.SelectAttr(n, "src"))
	}
	for _, n := range htmlquery.Find(doc, `//img[@src]`) {
		add(AssetImage, htmlquery.SelectAttr(n, "src"))
	}
	for _, n := range htmlquery.Find(doc, `//style`) {
		for _, m := range cssURLRe.FindAllStringSubmatch(htmlquery.InnerText(n), -1) {
			add(AssetURL, m[1])
		}
	}
	for _, n := range htmlquery.Find(doc, `//*[@style]`) {
		for _, m := range cssURLRe.FindAllStringSubmatch(htmlquery.SelectAttr(n, "style"), -1) {
			add(AssetURL, m[1])
		}
	}
	return out
}

// localPath resolves ref against dir. Remote, data and fragment-only
// references are not local.
func localPath(ref, dir string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	switch u.Scheme {
	case "":
	case "file":
		return filepath.Clean(filepath.FromSlash(u.Path)), true
	default:
		return "", false
	}
	if u.Path == "" {
		return "", false
	}
	p := filepath.FromSlash(u.Path)
	if filepath.IsAbs(p) {
		return filepath.Clean(p), true
	}
	return filepath.Join(dir, p), true
}
