package extract

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// textModel turns a node's direct child content into the text it owns.
type textModel struct {
	padTags map[string]bool
	pad     int
}

func newTextModel(padTags []string, pad int) textModel {
	m := textModel{padTags: make(map[string]bool, len(padTags)), pad: pad}
	for _, t := range padTags {
		m.padTags[strings.ToLower(t)] = true
	}
	return m
}

// directText concatenates the text owned by a node.
//
// Text nodes contribute their trimmed text. A span contributes blanks as
// wide as its rendered text (two columns per wide CJK rune) so that the
// span, which is extracted as its own node, keeps its horizontal slot.
// A br contributes a line break and padding tags contribute fixed blanks.
// Other elements contribute nothing. Pieces are joined with single spaces
// except around line breaks.
//
// The result is "" when nothing but whitespace remains.
func (m textModel) directText(items []Content) string {
	var pieces []string
	for _, it := range items {
		switch it.Kind {
		case ContentText:
			if t := strings.TrimSpace(it.Text); t != "" {
				pieces = append(pieces, t)
			}
		case ContentElement:
			switch tag := strings.ToLower(it.Tag); {
			case tag == "span":
				if w := runewidth.StringWidth(strings.TrimSpace(it.Text)); w > 0 {
					pieces = append(pieces, strings.Repeat(" ", w))
				}
			case tag == "br":
				pieces = append(pieces, "\n")
			case m.padTags[tag]:
				pieces = append(pieces, strings.Repeat(" ", m.pad))
			}
		}
	}

	var b strings.Builder
	for i, p := range pieces {
		if i > 0 && p != "\n" && pieces[i-1] != "\n" {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}

	text := strings.TrimRight(b.String(), " \n")
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return norm.NFC.String(text)
}
