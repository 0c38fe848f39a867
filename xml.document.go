package docxfill

import "strings"

// xmlDocument - Document over parsed "word/document.xml"
type xmlDocument struct {
	root *xmlNode
}

// <w:body> node, nil for parts without body
func (xdoc *xmlDocument) body() *xmlNode {
	if xdoc == nil || xdoc.root == nil {
		return nil
	}
	return xdoc.root.find("body")
}

// Paragraphs - body level paragraphs, table cell paragraphs are not included
func (xdoc *xmlDocument) Paragraphs() []TextUnit {
	body := xdoc.body()
	if body == nil {
		return nil
	}
	var units []TextUnit
	for _, n := range body.children("p") {
		units = append(units, &xmlParagraph{node: n})
	}
	return units
}

// Tables - body level tables, nested tables are part of its cell
func (xdoc *xmlDocument) Tables() []Table {
	body := xdoc.body()
	if body == nil {
		return nil
	}
	var tables []Table
	for _, n := range body.children("tbl") {
		tables = append(tables, &xmlTable{node: n})
	}
	return tables
}

// Plaintext - paragraphs and table rows as lines.
// Cells of the same row are separated with tab.
func (xdoc *xmlDocument) Plaintext() string {
	body := xdoc.body()
	if body == nil {
		return ""
	}

	var lines []string
	for _, n := range body.Nodes {
		switch {
		case n.isWord("p"):
			lines = append(lines, string(n.Contents()))
		case n.isWord("tbl"):
			for _, row := range (&xmlTable{node: n}).Rows() {
				var cells []string
				for _, c := range row.Cells() {
					cells = append(cells, c.Text())
				}
				lines = append(lines, strings.Join(cells, "\t"))
			}
		}
	}
	return strings.Join(lines, "\n")
}
