package extract_test

import (
	"context"
	"testing"

	"github.com/matzehuels/html2deck/pkg/extract"
	"github.com/matzehuels/html2deck/pkg/extract/extracttest"
	"github.com/matzehuels/html2deck/pkg/scene"
	"github.com/matzehuels/html2deck/pkg/style"
)

func box(x, y, w, h float64) scene.Rect { return scene.Rect{X: x, Y: y, Width: w, Height: h} }

func newExtractor(t *testing.T, doc *extracttest.Node) (*extract.Extractor, *extracttest.Surface) {
	t.Helper()
	s := extracttest.NewSurface(map[string]*extracttest.Node{"deck.html": doc})
	if err := s.Load(context.Background(), "deck.html"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return extract.New(s, extract.Options{RasterDir: t.TempDir()}), s
}

func TestBackgroundInheritance(t *testing.T) {
	parent := extracttest.El("div", "card", box(0, 0, 400, 300),
		extracttest.El("div", "same", box(10, 10, 100, 50)).
			WithStyle("background-color", "rgb(240, 240, 240)").WithText("same bg"),
		extracttest.El("div", "faint", box(10, 70, 100, 50)).
			WithStyle("background-color", "rgba(211, 47, 47, 0.05)").WithText("faint bg"),
		extracttest.El("div", "clear", box(10, 130, 100, 50)).
			WithStyle("background-color", "rgba(0, 0, 0, 0)").WithText("no bg"),
	).WithStyle("background-color", "rgb(240, 240, 240)")

	body := extracttest.El("body", "", box(0, 0, 1280, 720), parent)
	x, s := newExtractor(t, body)

	root := s.Wrap(parent)
	n := x.Extract(context.Background(), root, style.Transparent, extract.Frame{Path: "0"})
	if n == nil {
		t.Fatal("Extract returned nil")
	}
	if !n.OwnBackground {
		t.Error("card should own its background against a transparent ancestor")
	}
	if len(n.Children) != 3 {
		t.Fatalf("children = %d, want 3", len(n.Children))
	}

	want := map[string]bool{"same": false, "faint": true, "clear": false}
	for _, c := range n.Children {
		if got := c.OwnBackground; got != want[c.Classes[0]] {
			t.Errorf("%s.OwnBackground = %v, want %v", c.Classes[0], got, want[c.Classes[0]])
		}
	}
}

func TestInheritedBackgroundPassesThroughTransparentNodes(t *testing.T) {
	leaf := extracttest.El("p", "", box(0, 0, 50, 20)).
		WithStyle("background-color", "rgb(10, 20, 30)").WithText("x")
	middle := extracttest.El("div", "", box(0, 0, 100, 100), leaf)
	outer := extracttest.El("div", "", box(0, 0, 200, 200), middle).
		WithStyle("background-color", "rgb(10, 20, 30)")
	body := extracttest.El("body", "", box(0, 0, 1280, 720), outer)

	x, s := newExtractor(t, body)
	n := x.Extract(context.Background(), s.Wrap(outer), style.Transparent, extract.Frame{Path: "0"})
	if n == nil || len(n.Children) != 1 || len(n.Children[0].Children) != 1 {
		t.Fatalf("unexpected tree: %+v", n)
	}
	if n.Children[0].Children[0].OwnBackground {
		t.Error("leaf matching the grandparent background should not own it")
	}
}

func TestIconShortCircuit(t *testing.T) {
	icon := extracttest.El("span", "material-icons", box(20, 20, 24, 24),
		extracttest.El("b", "", box(20, 20, 10, 10)).WithText("inner"),
	).WithText("check")
	body := extracttest.El("body", "", box(0, 0, 1280, 720), icon)

	x, s := newExtractor(t, body)
	n := x.Extract(context.Background(), s.Wrap(icon), style.Transparent, extract.Frame{Slide: 0, Path: "0.0"})
	if n == nil {
		t.Fatal("icon pruned")
	}
	if n.Role != scene.RoleIcon {
		t.Errorf("Role = %v, want icon", n.Role)
	}
	if n.RasterPath == "" {
		t.Error("RasterPath not set")
	}
	if n.Text != "" || len(n.Children) != 0 {
		t.Errorf("raster leaf has text=%q children=%d", n.Text, len(n.Children))
	}
	if got := s.Captures(); len(got) != 1 || got[0] != n.RasterPath {
		t.Errorf("captures = %v, want [%s]", got, n.RasterPath)
	}
}

func TestFailedCaptureIsPruned(t *testing.T) {
	icon := extracttest.El("span", "check-icon", box(0, 0, 24, 24))
	icon.FailCapture = true
	text := extracttest.El("p", "", box(30, 0, 100, 24)).WithText("label")
	row := extracttest.El("div", "row", box(0, 0, 200, 24), icon, text)
	body := extracttest.El("body", "", box(0, 0, 1280, 720), row)

	x, s := newExtractor(t, body)
	n := x.Extract(context.Background(), s.Wrap(row), style.Transparent, extract.Frame{Path: "0"})
	if n == nil {
		t.Fatal("row pruned")
	}
	if len(n.Children) != 1 || n.Children[0].Text != "label" {
		t.Errorf("children = %+v, want only the label", n.Children)
	}
}

func TestStaleAndHiddenNodesAreSkipped(t *testing.T) {
	stale := extracttest.El("p", "", box(0, 0, 10, 10)).WithText("stale")
	stale.Stale = true
	hidden := extracttest.El("p", "", box(0, 0, 0, 10)).WithText("hidden")
	visible := extracttest.El("p", "", box(0, 20, 10, 10)).WithText("visible")
	wrap := extracttest.El("div", "", box(0, 0, 100, 100), stale, hidden, visible)
	body := extracttest.El("body", "", box(0, 0, 1280, 720), wrap)

	x, s := newExtractor(t, body)
	n := x.Extract(context.Background(), s.Wrap(wrap), style.Transparent, extract.Frame{Path: "0"})
	if n == nil || len(n.Children) != 1 {
		t.Fatalf("got %+v, want one surviving child", n)
	}
	if n.Children[0].Text != "visible" {
		t.Errorf("survivor text = %q", n.Children[0].Text)
	}
	if n.Children[0].ID != "0.2" {
		t.Errorf("survivor ID = %q, want traversal path 0.2", n.Children[0].ID)
	}
}

func TestEmptyWrappersArePruned(t *testing.T) {
	inner := extracttest.El("div", "", box(0, 0, 10, 10))
	wrap := extracttest.El("div", "", box(0, 0, 100, 100), extracttest.El("div", "", box(0, 0, 50, 50), inner))
	body := extracttest.El("body", "", box(0, 0, 1280, 720), wrap)

	x, s := newExtractor(t, body)
	if n := x.Extract(context.Background(), s.Wrap(wrap), style.Transparent, extract.Frame{Path: "0"}); n != nil {
		t.Errorf("Extract = %+v, want nil", n)
	}
}

func TestSlides(t *testing.T) {
	title := extracttest.El("h1", "title", box(140, 100, 400, 60)).
		WithStyle("font-size", "40px", "font-weight", "700").WithText("Agenda")
	header := extracttest.El("div", "slide-header", box(40, 80, 1200, 100), title)
	card := extracttest.El("div", "card", box(140, 200, 300, 200),
		extracttest.El("p", "", box(150, 210, 200, 30)).WithText("Point"),
	).WithStyle("background-color", "rgb(255, 255, 255)")
	content := extracttest.El("div", "slide-content", box(40, 180, 1200, 500), card)
	slide1 := extracttest.El("section", "slide", box(40, 80, 1280, 720), header, content).
		WithStyle("background", "rgba(0, 0, 0, 0) linear-gradient(135deg, rgb(1, 2, 3) 0%, rgb(4, 5, 6) 100%) repeat scroll 0% 0% / auto padding-box border-box")

	plain := extracttest.El("p", "", box(100, 900, 200, 40)).WithText("Bare slide")
	slide2 := extracttest.El("section", "slide", box(40, 800, 1280, 720), plain)

	body := extracttest.El("body", "", box(0, 0, 1360, 1600), slide1, slide2)
	x, _ := newExtractor(t, body)

	slides, err := x.Slides(context.Background())
	if err != nil {
		t.Fatalf("Slides: %v", err)
	}
	if len(slides) != 2 {
		t.Fatalf("slides = %d, want 2", len(slides))
	}

	s1 := slides[0]
	if len(s1.Elements) != 2 {
		t.Fatalf("slide 1 elements = %d, want 2", len(s1.Elements))
	}
	if got := s1.Elements[0]; got.Text != "Agenda" || got.Box != box(100, 20, 400, 60) {
		t.Errorf("title = %q at %+v, want Agenda at slide-relative (100,20)", got.Text, got.Box)
	}
	if got := s1.Elements[0].Style.FontSizePx; got != 40 {
		t.Errorf("title font size = %v, want 40", got)
	}
	if s1.Elements[0].ID != "0.0" || s1.Elements[1].ID != "1.0" {
		t.Errorf("ids = %q, %q; want 0.0, 1.0", s1.Elements[0].ID, s1.Elements[1].ID)
	}
	if style.ParseLinearGradient(s1.Background) == nil {
		t.Errorf("slide 1 background = %q, want a gradient", s1.Background)
	}

	s2 := slides[1]
	if len(s2.Elements) != 1 || s2.Elements[0].Text != "Bare slide" {
		t.Fatalf("slide 2 = %+v, want the container's own child", s2.Elements)
	}
	if s2.Elements[0].Box.Y != 100 {
		t.Errorf("slide 2 child y = %v, want 100", s2.Elements[0].Box.Y)
	}
	if s2.Index != 1 {
		t.Errorf("slide 2 index = %d", s2.Index)
	}
}

func TestSlideBackgroundFallsBackToColor(t *testing.T) {
	slide := extracttest.El("div", "slide", box(0, 0, 1280, 720),
		extracttest.El("p", "", box(0, 0, 10, 10)).WithText("x")).
		WithStyle("background", "none", "background-color", "rgb(9, 9, 9)")
	body := extracttest.El("body", "", box(0, 0, 1280, 720), slide)

	x, _ := newExtractor(t, body)
	slides, err := x.Slides(context.Background())
	if err != nil {
		t.Fatalf("Slides: %v", err)
	}
	if got := slides[0].Background; got != "rgb(9, 9, 9)" {
		t.Errorf("Background = %q, want rgb(9, 9, 9)", got)
	}
}

func TestSlidesWithoutDocument(t *testing.T) {
	s := extracttest.NewSurface(nil)
	x := extract.New(s, extract.Options{})
	if _, err := x.Slides(context.Background()); err == nil {
		t.Error("Slides without a loaded document should fail")
	}
}
