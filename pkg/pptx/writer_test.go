package pptx_test

import (
	"bytes"
	"encoding/xml"
	"image/color"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/html2deck/pkg/pptx"
)

// readParts writes p to memory and returns every zip part by name.
func readParts(t *testing.T, p *pptx.Presentation) map[string]string {
	t.Helper()
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reopen zip: %v", err)
	}
	parts := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		parts[f.Name] = string(data)
	}
	return parts
}

type element struct {
	name  string
	attrs map[string]string
}

// scan returns the start elements of an XML part in document order and
// fails the test if the part is not well-formed.
func scan(t *testing.T, name, data string) []element {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(data))
	var out []element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("%s is not well-formed: %v", name, err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			e := element{name: se.Name.Local, attrs: map[string]string{}}
			for _, a := range se.Attr {
				e.attrs[a.Name.Local] = a.Value
			}
			out = append(out, e)
		}
	}
}

func find(els []element, name string) []element {
	var out []element
	for _, e := range els {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := imaging.Save(imaging.New(2, 2, color.NRGBA{R: 255, A: 255}), path); err != nil {
		t.Fatalf("save png: %v", err)
	}
	return path
}

func TestEmptyPresentation(t *testing.T) {
	parts := readParts(t, pptx.New())
	for _, name := range []string{
		"[Content_Types].xml", "_rels/.rels", "docProps/app.xml", "docProps/core.xml",
		"ppt/presentation.xml", "ppt/_rels/presentation.xml.rels",
		"ppt/slideMasters/slideMaster1.xml", "ppt/slideLayouts/slideLayout1.xml", "ppt/theme/theme1.xml",
	} {
		data, ok := parts[name]
		if !ok {
			t.Errorf("missing part %s", name)
			continue
		}
		scan(t, name, data)
	}

	sz := find(scan(t, "presentation", parts["ppt/presentation.xml"]), "sldSz")
	if len(sz) != 1 || sz[0].attrs["cx"] != "12192000" || sz[0].attrs["cy"] != "6858000" {
		t.Errorf("sldSz = %+v", sz)
	}
}

func TestShapesInOrder(t *testing.T) {
	dir := t.TempDir()
	icon := writePNG(t, dir, "icon.png")

	p := pptx.New()
	s := p.AddSlide()
	s.AddRoundedRectangle(pptx.Pixels(10), pptx.Pixels(10), pptx.Pixels(200), pptx.Pixels(100), 8000).
		SetFill(pptx.RGB{R: 227, G: 127, B: 127}).
		SetShadow(pptx.Shadow{BlurEMU: pptx.Pixels(4), DistEMU: pptx.Pixels(2), Direction: 90, Alpha: 0.2})
	s.AddPicture(icon, 0, 0, pptx.Pixels(24), pptx.Pixels(24))
	s.AddTextBox(0, 0, pptx.Pixels(100), pptx.Pixels(30)).
		SetText("Tom & Jerry\nline two").
		SetFont(pptx.Font{SizePt: 30, Bold: true, Color: pptx.RGB{R: 0x33, G: 0x33, B: 0x33}}).
		SetAlign(pptx.AlignCenter)

	parts := readParts(t, p)
	els := scan(t, "slide1", parts["ppt/slides/slide1.xml"])

	var order []string
	for _, e := range els {
		switch e.name {
		case "sp", "pic":
			order = append(order, e.name)
		}
	}
	if strings.Join(order, ",") != "sp,pic,sp" {
		t.Errorf("shape order = %v, want sp,pic,sp", order)
	}

	geoms := find(els, "prstGeom")
	if geoms[0].attrs["prst"] != "roundRect" {
		t.Errorf("first geometry = %q, want roundRect", geoms[0].attrs["prst"])
	}
	if gd := find(els, "gd"); len(gd) != 1 || gd[0].attrs["fmla"] != "val 8000" {
		t.Errorf("adj guide = %+v", gd)
	}
	if len(find(els, "noFill")) < 1 {
		t.Error("rectangle outline not suppressed")
	}
	shdw := find(els, "outerShdw")
	if len(shdw) != 1 || shdw[0].attrs["blurRad"] != "38100" || shdw[0].attrs["dir"] != "5400000" {
		t.Errorf("shadow = %+v", shdw)
	}
	if a := find(els, "alpha"); len(a) != 1 || a[0].attrs["val"] != "20000" {
		t.Errorf("shadow alpha = %+v", a)
	}

	ids := map[string]bool{}
	for _, c := range find(els, "cNvPr") {
		if ids[c.attrs["id"]] {
			t.Errorf("duplicate shape id %s", c.attrs["id"])
		}
		ids[c.attrs["id"]] = true
	}

	if blip := find(els, "blip"); len(blip) != 1 || blip[0].attrs["embed"] != "rId2" {
		t.Errorf("blip = %+v", blip)
	}
	rels := find(scan(t, "rels", parts["ppt/slides/_rels/slide1.xml.rels"]), "Relationship")
	if len(rels) != 2 || rels[1].attrs["Id"] != "rId2" || rels[1].attrs["Target"] != "../media/image1.png" {
		t.Errorf("slide rels = %+v", rels)
	}
	if _, ok := parts["ppt/media/image1.png"]; !ok {
		t.Error("media part missing")
	}

	rpr := find(els, "rPr")
	if len(rpr) == 0 || rpr[0].attrs["sz"] != "3000" || rpr[0].attrs["b"] != "1" {
		t.Errorf("run props = %+v", rpr)
	}
	if len(find(els, "br")) != 1 || len(find(els, "r")) != 2 {
		t.Error("multi-line text should be two runs and one break")
	}
	if ppr := find(els, "pPr"); len(ppr) != 1 || ppr[0].attrs["algn"] != "ctr" {
		t.Errorf("paragraph props = %+v", ppr)
	}
	if !strings.Contains(parts["ppt/slides/slide1.xml"], "Tom &amp; Jerry") {
		t.Error("text not escaped")
	}
	if !strings.Contains(parts["ppt/slides/slide1.xml"], `val="333333"`) {
		t.Error("text color missing")
	}
}

func TestBackgrounds(t *testing.T) {
	p := pptx.New()
	p.AddSlide().SetBackgroundGradient(270, pptx.RGB{R: 1, G: 2, B: 3}, pptx.RGB{R: 4, G: 5, B: 6})
	p.AddSlide().SetBackgroundSolid(pptx.RGB{R: 255})
	p.AddSlide()

	parts := readParts(t, p)

	g := scan(t, "slide1", parts["ppt/slides/slide1.xml"])
	if lin := find(g, "lin"); len(lin) != 1 || lin[0].attrs["ang"] != "5400000" {
		t.Errorf("gradient angle = %+v, want 5400000 (top to bottom)", lin)
	}
	if gs := find(g, "gs"); len(gs) != 2 || gs[0].attrs["pos"] != "0" || gs[1].attrs["pos"] != "100000" {
		t.Errorf("stops = %+v", gs)
	}
	if !strings.Contains(parts["ppt/slides/slide1.xml"], `val="010203"`) {
		t.Error("first stop color missing")
	}

	solid := parts["ppt/slides/slide2.xml"]
	if !strings.Contains(solid, "<p:bg>") || !strings.Contains(solid, `val="FF0000"`) {
		t.Error("solid background missing")
	}
	if strings.Contains(parts["ppt/slides/slide3.xml"], "<p:bg>") {
		t.Error("default slide should inherit the master background")
	}

	ids := find(scan(t, "presentation", parts["ppt/presentation.xml"]), "sldId")
	if len(ids) != 3 || ids[2].attrs["id"] != "258" || ids[2].attrs["id"] == ids[1].attrs["id"] {
		t.Errorf("slide ids = %+v", ids)
	}
}

func TestMediaNumberedAcrossSlides(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png")
	b := writePNG(t, dir, "b.png")

	p := pptx.New()
	p.AddSlide().AddPicture(a, 0, 0, 10, 10)
	s := p.AddSlide()
	s.AddTextBox(0, 0, 10, 10).SetText("x")
	s.AddPicture(b, 0, 0, 10, 10)

	parts := readParts(t, p)
	rels := find(scan(t, "rels", parts["ppt/slides/_rels/slide2.xml.rels"]), "Relationship")
	if len(rels) != 2 || rels[1].attrs["Target"] != "../media/image2.png" {
		t.Errorf("slide 2 rels = %+v", rels)
	}
	ct := scan(t, "content types", parts["[Content_Types].xml"])
	pngDefaults := 0
	for _, d := range find(ct, "Default") {
		if d.attrs["Extension"] == "png" {
			pngDefaults++
		}
	}
	if pngDefaults != 1 {
		t.Errorf("png defaults = %d, want 1", pngDefaults)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "deck.pptx")
	p := pptx.New()
	p.AddSlide().AddRectangle(0, 0, 10, 10).SetFill(pptx.RGB{})
	if err := p.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("saved file is not a zip: %v", err)
	}
	zr.Close()
}

func TestMissingImageIsSkipped(t *testing.T) {
	dir := t.TempDir()
	kept := writePNG(t, dir, "kept.png")

	var logs bytes.Buffer
	p := pptx.New()
	p.Logger = log.NewWithOptions(&logs, log.Options{})
	s := p.AddSlide()
	s.AddPicture(filepath.Join(dir, "gone.png"), 0, 0, 10, 10)
	s.AddTextBox(0, 0, 10, 10).SetText("still here")
	s.AddPicture(kept, 0, 0, 10, 10)

	parts := readParts(t, p)
	slide := scan(t, "slide", parts["ppt/slides/slide1.xml"])
	if n := len(find(slide, "pic")); n != 1 {
		t.Errorf("got %d pictures, want the readable one only", n)
	}
	if !strings.Contains(parts["ppt/slides/slide1.xml"], "still here") {
		t.Error("text box next to the missing picture was dropped")
	}
	rels := find(scan(t, "rels", parts["ppt/slides/_rels/slide1.xml.rels"]), "Relationship")
	if len(rels) != 2 || rels[1].attrs["Target"] != "../media/image1.png" {
		t.Errorf("slide rels = %+v", rels)
	}
	if _, ok := parts["ppt/media/image2.png"]; ok {
		t.Error("media part written for the missing picture")
	}
	if !strings.Contains(logs.String(), "skipping picture") || !strings.Contains(logs.String(), "gone.png") {
		t.Errorf("missing warning, log = %q", logs.String())
	}
}

func TestSlideCount(t *testing.T) {
	p := pptx.New()
	p.AddSlide()
	p.AddSlide().AddTextBox(0, 0, 10, 10).SetText("x")
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		t.Fatal(err)
	}
	n, err := pptx.SlideCount(buf.Bytes())
	if err != nil || n != 2 {
		t.Errorf("SlideCount = %d, %v, want 2", n, err)
	}
	if _, err := pptx.SlideCount([]byte("not a zip")); err == nil {
		t.Error("SlideCount should fail for garbage")
	}
}

func TestUnits(t *testing.T) {
	if pptx.Pixels(1) != 9525 || pptx.Pixels(1280) != pptx.PageWidth || pptx.Pixels(720) != pptx.PageHeight {
		t.Error("pixel conversion does not match page size")
	}
	if pptx.Points(1) != 12700 {
		t.Error("point conversion")
	}
	if got := (pptx.RGB{R: 10, G: 171, B: 255}).Hex(); got != "0AABFF" {
		t.Errorf("Hex = %q", got)
	}
}
