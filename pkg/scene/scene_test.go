package scene

import (
	"reflect"
	"strings"
	"testing"
)

func sampleTree() *Node {
	return &Node{
		ID:  "0",
		Tag: "div",
		Children: []*Node{
			{ID: "0.0", Tag: "div", Children: []*Node{
				{ID: "0.0.0", Tag: "span"},
			}},
			{ID: "0.1", Tag: "div", OwnBackground: true, Children: []*Node{
				{ID: "0.1.0", Tag: "p", Text: "hello"},
				{ID: "0.1.1", Tag: "div"},
			}},
			{ID: "0.2", Tag: "i", Role: RoleIcon, RasterPath: "icon.png"},
			{ID: "0.3", Tag: "i", Role: RoleIcon},
		},
	}
}

func TestPrune(t *testing.T) {
	got := Prune(sampleTree())
	if got == nil {
		t.Fatal("Prune removed the whole tree")
	}

	var ids []string
	Walk([]*Node{got}, func(n *Node, _ int) { ids = append(ids, n.ID) })
	want := []string{"0", "0.1", "0.1.0", "0.2"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("surviving ids = %v, want %v", ids, want)
	}
}

func TestPruneIdempotent(t *testing.T) {
	once := Prune(sampleTree())
	twice := Prune(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second prune changed the tree:\n once=%+v\ntwice=%+v", once, twice)
	}
}

func TestPruneDoesNotMutateInput(t *testing.T) {
	tree := sampleTree()
	_ = Prune(tree)
	if len(tree.Children) != 4 {
		t.Errorf("input children = %d, want 4", len(tree.Children))
	}
	if len(tree.Children[0].Children) != 1 {
		t.Error("input grandchildren were modified")
	}
}

func TestPruneEmptyWrapper(t *testing.T) {
	wrapper := &Node{ID: "0", Tag: "div", Children: []*Node{
		{ID: "0.0", Tag: "div", Children: []*Node{{ID: "0.0.0", Tag: "div"}}},
	}}
	if got := Prune(wrapper); got != nil {
		t.Errorf("Prune(empty wrapper) = %+v, want nil", got)
	}
}

func TestPruneRasterIsTerminal(t *testing.T) {
	n := &Node{ID: "0", Tag: "div", Role: RoleCodeBlock, RasterPath: "code.png", Text: "stray",
		Children: []*Node{{ID: "0.0", Tag: "p", Text: "x"}}}
	got := Prune(n)
	if got == nil {
		t.Fatal("raster node pruned")
	}
	if len(got.Children) != 0 || got.Text != "" {
		t.Errorf("raster node kept children=%d text=%q", len(got.Children), got.Text)
	}
}

func TestRoleText(t *testing.T) {
	for _, r := range []Role{RoleGeneric, RoleIcon, RoleCodeBlock} {
		b, err := r.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", r, err)
		}
		var back Role
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if back != r {
			t.Errorf("role %v decoded as %v", r, back)
		}
	}
	var r Role
	if err := r.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("UnmarshalText(bogus) should fail")
	}
}

func TestUnmarshalPrunes(t *testing.T) {
	data := []byte(`{"source":"a.html","slides":[{"index":0,"elements":[
		{"id":"0","tag":"div","box":{"x":0,"y":0,"width":10,"height":10},"style":{"font_size_px":16},"role":"generic"},
		{"id":"1","tag":"h1","box":{"x":0,"y":0,"width":10,"height":10},"style":{"font_size_px":16},"role":"generic","text":"Title"}
	]}]}`)
	d, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(d.Slides) != 1 || len(d.Slides[0].Elements) != 1 {
		t.Fatalf("got %+v, want one surviving element", d.Slides)
	}
	if d.Slides[0].Elements[0].Text != "Title" {
		t.Errorf("survivor = %+v", d.Slides[0].Elements[0])
	}
}

func TestDeckStats(t *testing.T) {
	d := &Deck{Slides: []Slide{{Elements: []*Node{Prune(sampleTree())}}}}
	s := d.Stats()
	want := Stats{Slides: 1, Nodes: 4, Texts: 1, Rasters: 1, Fills: 1}
	if s != want {
		t.Errorf("Stats() = %+v, want %+v", s, want)
	}
}

func TestToDOT(t *testing.T) {
	d := &Deck{Slides: []Slide{{Index: 0, Elements: []*Node{Prune(sampleTree())}}}}
	d.Slides[0].Elements[0].Children[0].Style.BackgroundColor = "rgb(255, 0, 0)"

	dot := ToDOT(d, DOTOptions{Detailed: true})
	for _, want := range []string{
		"digraph scene {",
		"subgraph cluster_0",
		`"slide0" -> "slide0/0"`,
		`"slide0/0" -> "slide0/0.1"`,
		"shape=folder",
		"shape=note",
		`fillcolor="#FF0000"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}
