package export

import (
	"fmt"
	"strings"

	"slidesmith/pkg/deck"
)

// Layout constants in inches. Body boxes hang below a fixed title band;
// the rest is derived from the slide size so every aspect ratio keeps the
// same margins.
const (
	slideMargin  = 0.5
	titleTop     = 0.3
	titleHeight  = 1.25
	bodyTop      = 1.75
	columnTop    = 2.0
	columnGap    = 0.5
	bottomMargin = 0.8
)

// Font sizes in hundredths of a point.
const (
	titleSize     = 1800
	bodySize      = 1400
	columnSize    = 1200
	citationsSize = 1000
)

const citationsColor = "646464"

func slidePart(slide deck.Slide, page pageSize, style styling) string {
	shapes := newShapeList()
	switch slide.Type {
	case deck.SlideTitle:
		titleSlideShapes(shapes, slide, page, style)
	case deck.SlideTwoColumn:
		twoColumnShapes(shapes, slide, page, style)
	case deck.SlideContentWithImage:
		imageSlideShapes(shapes, slide, page, style)
	default:
		bulletSlideShapes(shapes, slide, page, style)
	}
	citationsBox(shapes, slide.Citations, page, style)

	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:cSld>`)
	fmt.Fprintf(&b, `<p:bg><p:bgPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`, style.background)
	b.WriteString(`<p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)
	for _, shape := range shapes.shapes {
		b.WriteString(shape)
	}
	b.WriteString(`</p:spTree>`)
	b.WriteString(`</p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:sld>`)
	return b.String()
}

func titleSlideShapes(shapes *shapeList, slide deck.Slide, page pageSize, style styling) {
	shapes.add("Title", slideMargin, 2.0, page.width-2*slideMargin, 1.5,
		[]string{slide.Title}, centeredProps, runProps(titleSize, style.titleColor, style.font, false))
	subtitle := ""
	if len(slide.Content) > 0 {
		subtitle = slide.Content[0]
	}
	shapes.add("Subtitle", slideMargin, 3.75, page.width-2*slideMargin, 1.25,
		[]string{subtitle}, centeredProps, runProps(bodySize, style.bodyColor, style.font, false))
}

func bulletSlideShapes(shapes *shapeList, slide deck.Slide, page pageSize, style styling) {
	titleShape(shapes, slide.Title, page, style)
	shapes.add("Body", slideMargin, bodyTop, page.width-2*slideMargin, page.height-bodyTop-bottomMargin,
		slide.Content, bulletProps, runProps(bodySize, style.bodyColor, style.font, false))
}

func twoColumnShapes(shapes *shapeList, slide deck.Slide, page pageSize, style styling) {
	titleShape(shapes, slide.Title, page, style)
	left, right := splitColumns(slide.Content)
	columnWidth := (page.width - 2*slideMargin - columnGap) / 2
	columnHeight := page.height - 2.5
	props := runProps(columnSize, style.columnColor, style.font, false)
	shapes.add("Left Column", slideMargin, columnTop, columnWidth, columnHeight, left, spacedProps, props)
	shapes.add("Right Column", slideMargin+columnWidth+columnGap, columnTop, columnWidth, columnHeight, right, spacedProps, props)
}

func imageSlideShapes(shapes *shapeList, slide deck.Slide, page pageSize, style styling) {
	bulletSlideShapes(shapes, slide, page, style)
	if slide.ImageSuggestion == "" {
		return
	}
	shapes.add("Image Placeholder", 3.5, 5.0, 3.0, 1.5,
		[]string{fmt.Sprintf("[Image: %s]", slide.ImageSuggestion)},
		centeredSpacedProps, runProps(bodySize, style.bodyColor, style.font, false))
}

func citationsBox(shapes *shapeList, citations []string, page pageSize, style styling) {
	if len(citations) == 0 {
		return
	}
	shapes.add("Citations", slideMargin, page.height-bottomMargin, page.width-2*slideMargin, 0.5,
		[]string{strings.Join(citations, "; ")}, plainProps, runProps(citationsSize, citationsColor, style.font, true))
}

func titleShape(shapes *shapeList, title string, page pageSize, style styling) {
	shapes.add("Title", slideMargin, titleTop, page.width-2*slideMargin, titleHeight,
		[]string{title}, plainProps, runProps(titleSize, style.titleColor, style.font, false))
}

// splitColumns distributes content between the two columns. Items tagged
// "Column 1:" or "Column 2:" go where they say; untagged items fill the
// shorter column, left first.
func splitColumns(content []string) (left, right []string) {
	for _, item := range content {
		switch {
		case strings.HasPrefix(item, "Column 1:"):
			if text := strings.TrimSpace(strings.ReplaceAll(item, "Column 1:", "")); text != "" {
				left = append(left, text)
			}
		case strings.HasPrefix(item, "Column 2:"):
			if text := strings.TrimSpace(strings.ReplaceAll(item, "Column 2:", "")); text != "" {
				right = append(right, text)
			}
		default:
			if len(left) <= len(right) {
				left = append(left, item)
			} else {
				right = append(right, item)
			}
		}
	}
	return left, right
}

// Paragraph property presets. Bullets appear only on body text; plain
// boxes disable them explicitly since the master defines no list styles.
const (
	plainProps          = `<a:pPr><a:buNone/></a:pPr>`
	centeredProps       = `<a:pPr algn="ctr"><a:buNone/></a:pPr>`
	bulletProps         = `<a:pPr><a:buFont typeface="Arial"/><a:buChar char="&#8226;"/></a:pPr>`
	spacedProps         = `<a:pPr><a:spcAft><a:spcPts val="600"/></a:spcAft><a:buNone/></a:pPr>`
	centeredSpacedProps = `<a:pPr algn="ctr"><a:spcAft><a:spcPts val="600"/></a:spcAft><a:buNone/></a:pPr>`
)

func runProps(size int, color, font string, italic bool) string {
	attrs := fmt.Sprintf(` sz="%d"`, size)
	if italic {
		attrs += ` i="1"`
	}
	return fmt.Sprintf(`<a:rPr lang="en-US"%s><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:latin typeface="%s"/></a:rPr>`,
		attrs, color, xmlEscape(font))
}

// shapeList accumulates serialized shapes, numbering them after the root
// group which always takes id 1.
type shapeList struct {
	shapes []string
	nextID int
}

func newShapeList() *shapeList {
	return &shapeList{nextID: 2}
}

func (s *shapeList) add(name string, x, y, w, h float64, lines []string, pPr, rPr string) {
	var b strings.Builder
	b.WriteString(`<p:sp>`)
	fmt.Fprintf(&b, `<p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, s.nextID, name)
	fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`,
		emu(x), emu(y), emu(w), emu(h))
	b.WriteString(`<p:txBody><a:bodyPr wrap="square"><a:normAutofit/></a:bodyPr><a:lstStyle/>`)
	if len(lines) == 0 {
		lines = []string{""}
	}
	for _, line := range lines {
		b.WriteString(`<a:p>`)
		b.WriteString(pPr)
		b.WriteString(`<a:r>`)
		b.WriteString(rPr)
		fmt.Fprintf(&b, `<a:t>%s</a:t>`, xmlEscape(line))
		b.WriteString(`</a:r></a:p>`)
	}
	b.WriteString(`</p:txBody></p:sp>`)
	s.nextID++
	s.shapes = append(s.shapes, b.String())
}
