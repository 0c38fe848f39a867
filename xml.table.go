package docxfill

import (
	"strconv"
	"strings"
)

// xmlTable - <w:tbl>
type xmlTable struct {
	node *xmlNode
}

// Rows - direct table rows
func (tbl *xmlTable) Rows() []Row {
	var rows []Row
	for _, n := range tbl.node.children("tr") {
		rows = append(rows, &xmlRow{node: n})
	}
	return rows
}

// ColumnCount - columns of table grid, when grid is missing
// widest row decides
func (tbl *xmlTable) ColumnCount() int {
	if grid := tbl.node.child("tblGrid"); grid != nil {
		if cols := len(grid.children("gridCol")); cols > 0 {
			return cols
		}
	}

	var max int
	for _, n := range tbl.node.children("tr") {
		if w := (&xmlRow{node: n}).width(); w > max {
			max = w
		}
	}
	return max
}

// RemoveRow - delete row by index, out of range index is ignored
func (tbl *xmlTable) RemoveRow(index int) {
	rows := tbl.node.children("tr")
	if index < 0 || index >= len(rows) {
		return
	}
	rows[index].delete()
}

// InsertRow - clone template row, fit it to table columns and fill cells
func (tbl *xmlTable) InsertRow(index int, template Row, cells []string) Row {
	var nrow *xmlNode
	if tpl, ok := template.(*xmlRow); ok && tpl != nil {
		nrow = tpl.node.clone()
	} else {
		nrow = newWordNode("tr")
	}
	row := &xmlRow{node: nrow}
	row.fit(tbl.ColumnCount())

	for i, c := range row.Cells() {
		var text string
		if i < len(cells) {
			text = cells[i]
		}
		c.SetText(text)
	}

	rows := tbl.node.children("tr")
	switch {
	case index >= 0 && index < len(rows):
		rows[index].insertBefore(nrow)
	case len(rows) > 0:
		rows[len(rows)-1].insertAfter(nrow)
	default:
		tbl.node.add(nrow)
	}
	return row
}

// xmlRow - <w:tr>
type xmlRow struct {
	node *xmlNode
}

// Cells - direct row cells
func (row *xmlRow) Cells() []TextUnit {
	var cells []TextUnit
	for _, n := range row.node.children("tc") {
		cells = append(cells, &xmlCell{node: n})
	}
	return cells
}

// width - grid columns covered by row cells
func (row *xmlRow) width() int {
	var w int
	for _, n := range row.node.children("tc") {
		w += (&xmlCell{node: n}).span()
	}
	return w
}

// fit - drop or add cells so row covers exactly given columns
func (row *xmlRow) fit(columns int) {
	if columns <= 0 {
		return
	}

	for row.width() > columns {
		tcs := row.node.children("tc")
		if len(tcs) == 0 {
			break
		}
		tcs[len(tcs)-1].delete()
	}

	for row.width() < columns {
		tcs := row.node.children("tc")
		var ncell *xmlNode
		if len(tcs) > 0 {
			ncell = tcs[len(tcs)-1].cloneAndAppend()
			if span := ncell.find("gridSpan"); span != nil {
				span.delete()
			}
		} else {
			ncell = newWordNode("tc")
			row.node.add(ncell)
		}
		(&xmlCell{node: ncell}).SetText("")
	}
}

// xmlCell - <w:tc>
type xmlCell struct {
	node *xmlNode
}

// Text - cell paragraphs joined with new line
func (c *xmlCell) Text() string {
	var lines []string
	for _, p := range c.node.children("p") {
		lines = append(lines, string(p.Contents()))
	}
	return strings.Join(lines, "\n")
}

// SetText - one paragraph per line, paragraphs are reused so
// they keep styles, missing ones are cloned from last paragraph
func (c *xmlCell) SetText(text string) {
	lines := strings.Split(text, "\n")
	paras := c.node.children("p")
	if len(paras) == 0 {
		// cell must end with paragraph
		p := newWordNode("p")
		c.node.add(p)
		paras = append(paras, p)
	}

	for i, line := range lines {
		if i >= len(paras) {
			paras = append(paras, paras[len(paras)-1].cloneAndAppend())
		}
		p := &xmlParagraph{node: paras[i]}
		if p.Text() != line {
			p.SetText(line)
		}
	}

	for _, p := range paras[len(lines):] {
		p.delete()
	}
}

// span - grid columns taken by cell
func (c *xmlCell) span() int {
	props := c.node.child("tcPr")
	if props == nil {
		return 1
	}
	span := props.child("gridSpan")
	if span == nil {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(span.Attr("val")))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
