package document

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// TextRun is an atomic styled text span inside a paragraph. The node points
// at the run element; its text child is mutated during reconstruction.
type TextRun struct {
	Node      *XMLNode // the run element (<a:r>)
	TextNode  *XMLNode // the text carrier (<a:t>)
	Text      string
	Hyperlink bool
}

// LineBreak is a forced break inside a paragraph. Offset is the character
// position of the synthetic newline inside the paragraph's FullText.
type LineBreak struct {
	Node   *XMLNode
	Offset int
}

// ItemKind discriminates paragraph items. Tag names are inspected exactly
// once, at parse time; downstream components match over this closed set.
type ItemKind int

const (
	ItemRun ItemKind = iota
	ItemBreak
	ItemField
)

// ParagraphItem is one ordered unit of a paragraph.
type ParagraphItem struct {
	Kind  ItemKind
	Run   *TextRun
	Break *LineBreak
	// FieldText is the literal rendering of a field node (date, slide
	// number). It contributes to FullText for context but is never
	// translated or written back.
	FieldText string
}

// ParsedParagraph is an ordered sequence of runs, breaks and field literals
// plus their concatenated FullText.
type ParsedParagraph struct {
	Node     *XMLNode
	Items    []ParagraphItem
	FullText string
}

// Runs returns the paragraph's text runs in order.
func (p *ParsedParagraph) Runs() []*TextRun {
	var runs []*TextRun
	for i := range p.Items {
		if p.Items[i].Kind == ItemRun {
			runs = append(runs, p.Items[i].Run)
		}
	}
	return runs
}

// ShapeBounds is a shape's rectangle in EMU, bound to the transform nodes it
// was read from so the auto-sizer can mutate them in place.
type ShapeBounds struct {
	X, Y          int64
	Width, Height int64
	ext           *XMLNode
}

// SetSize writes new extents back into the transform node.
func (b *ShapeBounds) SetSize(width, height int64) {
	b.Width = width
	b.Height = height
	if b.ext != nil {
		b.ext.SetAttr("cx", strconv.FormatInt(width, 10))
		b.ext.SetAttr("cy", strconv.FormatInt(height, 10))
	}
}

// ParsedShape is a text-bearing container: an ordered paragraph list plus
// optional bounds. OriginalLength is the summed paragraph text length at
// parse time, kept for overflow estimation after reconstruction.
type ParsedShape struct {
	Node           *XMLNode
	Paragraphs     []*ParsedParagraph
	Bounds         *ShapeBounds
	OriginalLength int
	// originalWidth is the summed display width at parse time, used by the
	// auto-sizer's overflow estimate.
	originalWidth int
}

// CurrentLength sums the shape's paragraph text lengths as reconstructed.
func (s *ParsedShape) CurrentLength() int {
	total := 0
	for _, p := range s.Paragraphs {
		total += len([]rune(p.FullText))
	}
	return total
}

// TableCell holds one cell's paragraph sequence and concatenated text.
type TableCell struct {
	Node       *XMLNode
	Paragraphs []*ParsedParagraph
}

// FullText joins the cell's paragraph texts with newlines.
func (c *TableCell) FullText() string {
	parts := make([]string, len(c.Paragraphs))
	for i, p := range c.Paragraphs {
		parts[i] = p.FullText
	}
	return strings.Join(parts, "\n")
}

// ParsedTable is a 2-D grid of cells. Rows, not cells, are the atomic
// translation unit, to preserve cross-column context.
type ParsedTable struct {
	Node *XMLNode
	Rows [][]*TableCell
}

// TaskKind discriminates translation tasks.
type TaskKind int

const (
	TaskParagraph TaskKind = iota
	TaskTableRow
)

// TranslationTask carries one translation unit's original text plus the
// back-references needed to write the result into the tree.
type TranslationTask struct {
	Kind      TaskKind
	Text      string
	Paragraph *ParsedParagraph // TaskParagraph
	Shape     *ParsedShape     // owning shape, for resize; nil for table rows
	Row       []*TableCell     // TaskTableRow
}

// PartModel is the parsed form of one XML part: the raw tree plus the shape
// and table forest extracted from it.
type PartModel struct {
	Root   *XMLNode
	Shapes []*ParsedShape
	Tables []*ParsedTable
}

// ParsePart parses part XML into its model. It works for slide, layout,
// master and notes parts as well as spreadsheet drawing parts, since all of
// them share the sp/txBody/p/r vocabulary under different namespace prefixes.
func ParsePart(src string) (*PartModel, error) {
	root, err := ParseXML(src)
	if err != nil {
		return nil, err
	}

	m := &PartModel{Root: root}

	for _, sp := range root.FindAll("sp") {
		shape := parseShape(sp)
		if shape != nil {
			m.Shapes = append(m.Shapes, shape)
		}
	}
	for _, tbl := range root.FindAll("tbl") {
		table := parseTable(tbl)
		if table != nil {
			m.Tables = append(m.Tables, table)
		}
	}
	return m, nil
}

// parseShape extracts the paragraph list from a shape node. A shape without
// a text body, or without any translatable paragraph, is dropped.
func parseShape(sp *XMLNode) *ParsedShape {
	txBody := sp.Find("txBody")
	if txBody == nil {
		return nil
	}

	shape := &ParsedShape{Node: sp, Bounds: parseBounds(sp)}
	for _, p := range txBody.ChildrenByLocal("p") {
		para := parseParagraph(p)
		if para != nil {
			shape.Paragraphs = append(shape.Paragraphs, para)
			shape.OriginalLength += len([]rune(para.FullText))
			shape.originalWidth += runewidth.StringWidth(para.FullText)
		}
	}
	if len(shape.Paragraphs) == 0 {
		return nil
	}
	return shape
}

// parseParagraph walks a paragraph's direct children in document order. A
// run node becomes a TextRun; a break node becomes a LineBreak plus a
// synthetic newline in FullText; a field node contributes its literal text
// for context but is structurally excluded from translation. A paragraph
// with no runs and no breaks has nothing to translate and is dropped.
func parseParagraph(p *XMLNode) *ParsedParagraph {
	para := &ParsedParagraph{Node: p}
	var full strings.Builder
	runs, breaks := 0, 0

	for _, child := range p.Children {
		if child.Kind != ElementNode {
			continue
		}
		switch child.Local {
		case "r":
			t := child.FirstChild("t")
			if t == nil {
				continue
			}
			run := &TextRun{
				Node:      child,
				TextNode:  t,
				Text:      t.InnerText(),
				Hyperlink: hasHyperlink(child),
			}
			para.Items = append(para.Items, ParagraphItem{Kind: ItemRun, Run: run})
			full.WriteString(run.Text)
			runs++
		case "br":
			br := &LineBreak{Node: child, Offset: len([]rune(full.String()))}
			para.Items = append(para.Items, ParagraphItem{Kind: ItemBreak, Break: br})
			full.WriteString("\n")
			breaks++
		case "fld":
			literal := ""
			if t := child.FirstChild("t"); t != nil {
				literal = t.InnerText()
			}
			para.Items = append(para.Items, ParagraphItem{Kind: ItemField, FieldText: literal})
			full.WriteString(literal)
		}
	}

	if runs == 0 && breaks == 0 {
		return nil
	}
	para.FullText = full.String()
	return para
}

// hasHyperlink reports whether the run's properties carry a hyperlink
// reference.
func hasHyperlink(run *XMLNode) bool {
	rPr := run.FirstChild("rPr")
	if rPr == nil {
		return false
	}
	link := rPr.Find("hlinkClick")
	if link == nil {
		return false
	}
	_, ok := link.Attr("id")
	return ok
}

// parseBounds reads the shape's transform extents. Absence is non-fatal:
// resizing simply becomes a no-op for the shape.
func parseBounds(sp *XMLNode) *ShapeBounds {
	spPr := sp.FirstChild("spPr")
	if spPr == nil {
		return nil
	}
	xfrm := spPr.FirstChild("xfrm")
	if xfrm == nil {
		return nil
	}
	ext := xfrm.FirstChild("ext")
	if ext == nil {
		return nil
	}
	cx, okX := ext.IntAttr("cx")
	cy, okY := ext.IntAttr("cy")
	if !okX || !okY {
		return nil
	}
	b := &ShapeBounds{Width: cx, Height: cy, ext: ext}
	if off := xfrm.FirstChild("off"); off != nil {
		b.X, _ = off.IntAttr("x")
		b.Y, _ = off.IntAttr("y")
	}
	return b
}

// parseTable walks row nodes, then cell nodes, building one TableCell per
// cell with its own nested paragraph list.
func parseTable(tbl *XMLNode) *ParsedTable {
	table := &ParsedTable{Node: tbl}
	for _, tr := range tbl.ChildrenByLocal("tr") {
		var row []*TableCell
		for _, tc := range tr.ChildrenByLocal("tc") {
			cell := &TableCell{Node: tc}
			if txBody := tc.FirstChild("txBody"); txBody != nil {
				for _, p := range txBody.ChildrenByLocal("p") {
					if para := parseParagraph(p); para != nil {
						cell.Paragraphs = append(cell.Paragraphs, para)
					}
				}
			}
			row = append(row, cell)
		}
		if len(row) > 0 {
			table.Rows = append(table.Rows, row)
		}
	}
	if len(table.Rows) == 0 {
		return nil
	}
	return table
}

// Tasks produces the part's ordered translation units: one per shape
// paragraph, then one per table row.
func (m *PartModel) Tasks() []*TranslationTask {
	var tasks []*TranslationTask
	for _, shape := range m.Shapes {
		for _, para := range shape.Paragraphs {
			if strings.TrimSpace(para.FullText) == "" {
				continue
			}
			tasks = append(tasks, &TranslationTask{
				Kind:      TaskParagraph,
				Text:      para.FullText,
				Paragraph: para,
				Shape:     shape,
			})
		}
	}
	for _, table := range m.Tables {
		for _, row := range table.Rows {
			texts := make([]string, len(row))
			nonEmpty := false
			for i, cell := range row {
				texts[i] = cell.FullText()
				if strings.TrimSpace(texts[i]) != "" {
					nonEmpty = true
				}
			}
			if !nonEmpty {
				continue
			}
			tasks = append(tasks, &TranslationTask{
				Kind: TaskTableRow,
				Text: strings.Join(texts, " | "),
				Row:  row,
			})
		}
	}
	return tasks
}

