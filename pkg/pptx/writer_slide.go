package pptx

import (
	"fmt"
	"math"
	"strings"

	"github.com/klauspost/compress/zip"
)

// slideRels assigns relationship IDs for a slide: rId1 is the layout,
// embedded pictures follow from rId2 in drawing order.
func (w *writer) slideRels(s *Slide) map[*Picture]string {
	rels := make(map[*Picture]string)
	next := 2
	for _, sh := range s.shapes {
		if pic, ok := sh.(*Picture); ok && w.embedded(pic) {
			rels[pic] = fmt.Sprintf("rId%d", next)
			next++
		}
	}
	return rels
}

func (w *writer) writeSlide(zw *zip.Writer, s *Slide, num int) error {
	rels := w.slideRels(s)

	var shapes strings.Builder
	shapeID := 2 // 1 is the group root
	for _, sh := range s.shapes {
		switch v := sh.(type) {
		case *AutoShape:
			shapes.WriteString(autoShapeXML(v, shapeID))
		case *Picture:
			rel, ok := rels[v]
			if !ok {
				continue
			}
			shapes.WriteString(pictureXML(v, shapeID, rel))
		case *TextBox:
			shapes.WriteString(textBoxXML(v, shapeID))
		}
		shapeID++
	}

	bg := ""
	if s.background != nil {
		bg = "    <p:bg>\n      <p:bgPr>\n" + fillXML(s.background) + "        <a:effectLst/>\n      </p:bgPr>\n    </p:bg>\n"
	}

	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">
  <p:cSld>
%s    <p:spTree>
%s%s    </p:spTree>
  </p:cSld>
  <p:clrMapOvr>
    <a:masterClrMapping/>
  </p:clrMapOvr>
</p:sld>`, nsDrawingML, nsOfficeDocRels, nsPresentationML, bg, groupRootXML, shapes.String())

	return writeRawXMLToZip(zw, fmt.Sprintf("ppt/slides/slide%d.xml", num), content)
}

func (w *writer) writeSlideRels(zw *zip.Writer, s *Slide, num int) error {
	rels := xmlRelationships{
		Xmlns: nsRelationships,
		Relationships: []xmlRelationship{
			{ID: "rId1", Type: relTypeSlideLayout, Target: "../slideLayouts/slideLayout1.xml"},
		},
	}
	ids := w.slideRels(s)
	for _, sh := range s.shapes {
		if pic, ok := sh.(*Picture); ok && w.embedded(pic) {
			rels.Relationships = append(rels.Relationships, xmlRelationship{
				ID: ids[pic], Type: relTypeImage, Target: "../media/" + w.media[pic],
			})
		}
	}
	return writeXMLToZip(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", num), rels)
}

const groupRootXML = `      <p:nvGrpSpPr>
        <p:cNvPr id="1" name=""/>
        <p:cNvGrpSpPr/>
        <p:nvPr/>
      </p:nvGrpSpPr>
      <p:grpSpPr>
        <a:xfrm>
          <a:off x="0" y="0"/>
          <a:ext cx="0" cy="0"/>
          <a:chOff x="0" y="0"/>
          <a:chExt cx="0" cy="0"/>
        </a:xfrm>
      </p:grpSpPr>
`

func autoShapeXML(s *AutoShape, id int) string {
	avLst := "<a:avLst/>"
	if s.Geometry == GeometryRoundRect {
		avLst = fmt.Sprintf(`<a:avLst><a:gd name="adj" fmla="val %d"/></a:avLst>`, s.Adjust)
	}
	return fmt.Sprintf(`      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="%d" name="Shape %d"/>
          <p:cNvSpPr/>
          <p:nvPr/>
        </p:nvSpPr>
        <p:spPr>
%s          <a:prstGeom prst="%s">%s</a:prstGeom>
%s          <a:ln><a:noFill/></a:ln>
%s        </p:spPr>
      </p:sp>
`, id, id, xfrmXML(s.Frame), s.Geometry, avLst, fillXML(s.Fill), shadowXML(s.Shadow))
}

func pictureXML(p *Picture, id int, rel string) string {
	return fmt.Sprintf(`      <p:pic>
        <p:nvPicPr>
          <p:cNvPr id="%d" name="Picture %d"/>
          <p:cNvPicPr>
            <a:picLocks noChangeAspect="1"/>
          </p:cNvPicPr>
          <p:nvPr/>
        </p:nvPicPr>
        <p:blipFill>
          <a:blip r:embed="%s"/>
          <a:stretch>
            <a:fillRect/>
          </a:stretch>
        </p:blipFill>
        <p:spPr>
%s          <a:prstGeom prst="rect"><a:avLst/></a:prstGeom>
        </p:spPr>
      </p:pic>
`, id, id, rel, xfrmXML(p.Frame))
}

func textBoxXML(t *TextBox, id int) string {
	wrap := "none"
	if t.WordWrap {
		wrap = "square"
	}
	algn := ""
	if t.Align != "" {
		algn = fmt.Sprintf(` algn="%s"`, t.Align)
	}
	return fmt.Sprintf(`      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="%d" name="TextBox %d"/>
          <p:cNvSpPr txBox="1"/>
          <p:nvPr/>
        </p:nvSpPr>
        <p:spPr>
%s          <a:prstGeom prst="rect"><a:avLst/></a:prstGeom>
          <a:noFill/>
        </p:spPr>
        <p:txBody>
          <a:bodyPr wrap="%s" rtlCol="0"/>
          <a:lstStyle/>
          <a:p>
            <a:pPr%s/>
%s          </a:p>
        </p:txBody>
      </p:sp>
`, id, id, xfrmXML(t.Frame), wrap, algn, runsXML(t.Text, t.Font))
}

// runsXML emits one run per line with breaks between them, all sharing
// the same run properties.
func runsXML(text string, f Font) string {
	attrs := fmt.Sprintf(` lang="en-US" sz="%d" dirty="0"`, max(f.SizePt, 1)*100)
	if f.Bold {
		attrs += ` b="1"`
	}
	rPr := fmt.Sprintf(`<a:rPr%s><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:rPr>`, attrs, f.Color.Hex())

	var b strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			fmt.Fprintf(&b, "            <a:br>%s</a:br>\n", rPr)
		}
		fmt.Fprintf(&b, "            <a:r>%s<a:t>%s</a:t></a:r>\n", rPr, xmlEscape(line))
	}
	return b.String()
}

func xfrmXML(f Frame) string {
	return fmt.Sprintf(`          <a:xfrm>
            <a:off x="%d" y="%d"/>
            <a:ext cx="%d" cy="%d"/>
          </a:xfrm>
`, f.X, f.Y, max(f.Width, 0), max(f.Height, 0))
}

func fillXML(f *Fill) string {
	if f == nil {
		return ""
	}
	switch f.Kind {
	case FillGradient:
		return fmt.Sprintf(`          <a:gradFill>
            <a:gsLst>
              <a:gs pos="0"><a:srgbClr val="%s"/></a:gs>
              <a:gs pos="100000"><a:srgbClr val="%s"/></a:gs>
            </a:gsLst>
            <a:lin ang="%d" scaled="1"/>
          </a:gradFill>
`, f.Color.Hex(), f.End.Hex(), linAngle(f.Angle))
	default:
		return fmt.Sprintf("          <a:solidFill><a:srgbClr val=\"%s\"/></a:solidFill>\n", f.Color.Hex())
	}
}

// linAngle converts a counter-clockwise angle in degrees to the clockwise
// 60000ths of a degree used by a:lin.
func linAngle(ccw float64) int {
	cw := math.Mod(360-ccw, 360)
	if cw < 0 {
		cw += 360
	}
	return int(math.Round(cw * 60000))
}

func shadowXML(s *Shadow) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf(`          <a:effectLst>
            <a:outerShdw blurRad="%d" dist="%d" dir="%d" algn="bl" rotWithShape="0">
              <a:srgbClr val="%s"><a:alpha val="%d"/></a:srgbClr>
            </a:outerShdw>
          </a:effectLst>
`, s.BlurEMU, s.DistEMU, int(math.Round(s.Direction*60000)), s.Color.Hex(), int(math.Round(s.Alpha*100000)))
}
