package docxfill_test

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"testing"

	"github.com/bobiverse/docxfill"
)

// Minimal parts for Word to accept generated docx
const (
	fixtureContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

	fixtureRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

	fixtureDocPrefix = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>`

	fixtureDocSuffix = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`
)

// Build docx archive with given body xml
func buildDocx(t testing.TB, body string) []byte {
	t.Helper()
	return buildDocxParts(t, map[string]string{
		"[Content_Types].xml": fixtureContentTypes,
		"_rels/.rels":         fixtureRels,
		"word/document.xml":   fixtureDocPrefix + body + fixtureDocSuffix,
	})
}

func buildDocxParts(t testing.TB, parts map[string]string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	zipw := zip.NewWriter(buf)
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml"} {
		content, ok := parts[name]
		if !ok {
			continue
		}
		fw, err := zipw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %s", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %s", name, err)
		}
	}
	if err := zipw.Close(); err != nil {
		t.Fatalf("zip close: %s", err)
	}
	return buf.Bytes()
}

func escapeXML(s string) string {
	buf := new(bytes.Buffer)
	xml.EscapeText(buf, []byte(s)) // #nosec G104
	return buf.String()
}

// <w:p> with one run
func para(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + escapeXML(text) + `</w:t></w:r></w:p>`
}

// <w:tc> with one paragraph
func cell(text string) string {
	return `<w:tc><w:tcPr><w:tcW w:w="2000" w:type="dxa"/></w:tcPr>` + para(text) + `</w:tc>`
}

// <w:tr> of cells
func row(texts ...string) string {
	var sb strings.Builder
	sb.WriteString(`<w:tr>`)
	for _, s := range texts {
		sb.WriteString(cell(s))
	}
	sb.WriteString(`</w:tr>`)
	return sb.String()
}

// <w:tbl> with grid of given columns
func table(columns int, rows ...string) string {
	var sb strings.Builder
	sb.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/></w:tblPr><w:tblGrid>`)
	for i := 0; i < columns; i++ {
		sb.WriteString(fmt.Sprintf(`<w:gridCol w:w="%d"/>`, 2000))
	}
	sb.WriteString(`</w:tblGrid>`)
	for _, r := range rows {
		sb.WriteString(r)
	}
	sb.WriteString(`</w:tbl>`)
	return sb.String()
}

// Open fixture as template
func openFixture(t testing.TB, body string) *docxfill.Template {
	t.Helper()
	tdoc, err := docxfill.OpenTemplateWithBytes(buildDocx(t, body))
	if err != nil {
		t.Fatalf("OpenTemplateWithBytes: %s", err)
	}
	return tdoc
}

// Cell texts of table rows
func tableTexts(tbl docxfill.Table) [][]string {
	var rows [][]string
	for _, r := range tbl.Rows() {
		var cells []string
		for _, c := range r.Cells() {
			cells = append(cells, c.Text())
		}
		rows = append(rows, cells)
	}
	return rows
}

// Texts of all body paragraphs
func paragraphTexts(doc docxfill.Document) []string {
	var texts []string
	for _, p := range doc.Paragraphs() {
		texts = append(texts, p.Text())
	}
	return texts
}
