package extract

import (
	"testing"

	"github.com/matzehuels/html2deck/pkg/scene"
)

func TestDirectText(t *testing.T) {
	m := newTextModel(DefaultInlinePadTags, DefaultInlinePad)

	tests := []struct {
		name  string
		items []Content
		want  string
	}{
		{
			name:  "plain text",
			items: []Content{{Kind: ContentText, Text: "  Hello world \n"}},
			want:  "Hello world",
		},
		{
			name: "span placeholder keeps slot",
			items: []Content{
				{Kind: ContentElement, Tag: "span", Text: "NEW"},
				{Kind: ContentText, Text: " Feature"},
			},
			want: "    Feature",
		},
		{
			name: "cjk span is double width",
			items: []Content{
				{Kind: ContentText, Text: "A"},
				{Kind: ContentElement, Tag: "span", Text: "中文"},
				{Kind: ContentText, Text: "B"},
			},
			want: "A      B",
		},
		{
			name: "line break",
			items: []Content{
				{Kind: ContentText, Text: "one"},
				{Kind: ContentElement, Tag: "br"},
				{Kind: ContentText, Text: "two"},
			},
			want: "one\ntwo",
		},
		{
			name: "inline marker padding",
			items: []Content{
				{Kind: ContentElement, Tag: "i"},
				{Kind: ContentText, Text: "item"},
			},
			want: "     item",
		},
		{
			name: "descendant text is not duplicated",
			items: []Content{
				{Kind: ContentText, Text: "\n  "},
				{Kind: ContentElement, Tag: "p", Text: "child paragraph"},
				{Kind: ContentText, Text: "\n"},
				{Kind: ContentElement, Tag: "div", Text: "another"},
			},
			want: "",
		},
		{
			name: "only placeholders",
			items: []Content{
				{Kind: ContentElement, Tag: "span", Text: "badge"},
			},
			want: "",
		},
		{
			name: "trailing placeholder trimmed",
			items: []Content{
				{Kind: ContentText, Text: "Label"},
				{Kind: ContentElement, Tag: "span", Text: "x"},
			},
			want: "Label",
		},
		{
			name:  "comments ignored",
			items: []Content{{Kind: ContentOther, Text: "comment"}, {Kind: ContentText, Text: "ok"}},
			want:  "ok",
		},
		{
			name:  "nfc normalized",
			items: []Content{{Kind: ContentText, Text: "e\u0301"}},
			want:  "\u00e9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.directText(tt.items); got != tt.want {
				t.Errorf("directText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultIconClasses, DefaultCodeBlockClasses)

	tests := []struct {
		classes []string
		want    scene.Role
	}{
		{nil, scene.RoleGeneric},
		{[]string{"card", "title"}, scene.RoleGeneric},
		{[]string{"material-icons"}, scene.RoleIcon},
		{[]string{"x", "check-icon"}, scene.RoleIcon},
		{[]string{"code-block"}, scene.RoleCodeBlock},
		{[]string{"code-block", "feature-icon"}, scene.RoleIcon},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.classes); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.classes, got, tt.want)
		}
	}
}

func TestSplitClasses(t *testing.T) {
	got := SplitClasses("  card  title card\tbig ")
	want := []string{"card", "title", "big"}
	if len(got) != len(want) {
		t.Fatalf("SplitClasses = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("class %d = %q, want %q", i, got[i], want[i])
		}
	}
	if SplitClasses("") != nil {
		t.Error("SplitClasses(\"\") should be nil")
	}
}

func TestRasterName(t *testing.T) {
	if got := rasterName(Frame{Slide: 2, Path: "1.0.4"}); got != "slide3_1-0-4.png" {
		t.Errorf("rasterName = %q", got)
	}
}
