package docxfill

import (
	"io"
	"strings"

	"github.com/fatih/color"
)

// RenderOptions - optional render behaviour
type RenderOptions struct {
	// Trace receives every replace/clone step, nil is silent
	Trace io.Writer
}

// Render - replace paragraph placeholders with record fields and
// expand repeat rows of every table with record RepeatKey items.
// Document is changed in place.
func Render(doc Document, rec Record) error {
	return RenderWith(doc, rec, RenderOptions{})
}

// RenderWith - Render with options
func RenderWith(doc Document, rec Record, opts RenderOptions) error {
	if doc == nil {
		return &RenderError{Message: "no document"}
	}
	if rec == nil {
		return &RenderError{Message: "no record"}
	}

	r := &renderer{trace: opts.Trace}

	fields := rec.Fields()
	for _, p := range doc.Paragraphs() {
		if substituteUnit(p, fields) {
			r.tracef(color.FgHiCyan, "REPLACE: %s", p.Text())
		}
	}

	items := rec.Repeated()
	for _, tbl := range doc.Tables() {
		r.expandRows(tbl, items)
	}

	return nil
}

// ExpandRows - replace every repeat row of table with one row per item.
// Returns how many repeat rows were found.
func ExpandRows(tbl Table, items []Record) int {
	return (&renderer{}).expandRows(tbl, items)
}

type renderer struct {
	trace io.Writer
}

func (r *renderer) tracef(attr color.Attribute, format string, args ...any) {
	if r.trace == nil {
		return
	}
	color.New(attr).Fprintf(r.trace, "\t"+format+"\n", args...) // #nosec G104 - debug output only
}

// Repeat row found while scanning table and rows made out of it
type rowExpansion struct {
	index    int
	template Row
	rows     [][]string
}

func (r *renderer) expandRows(tbl Table, items []Record) int {
	if tbl == nil {
		return 0
	}

	columns := tbl.ColumnCount()

	// Collect everything first, table is not touched while scanning
	var plan []rowExpansion
	for i, row := range tbl.Rows() {
		cells := row.Cells()
		texts := make([]string, len(cells))
		for j, c := range cells {
			texts[j] = c.Text()
		}
		if !strings.Contains(strings.Join(texts, ""), RepeatRowMarker) {
			continue
		}

		exp := rowExpansion{index: i, template: row}
		for _, item := range items {
			fields := item.Fields()

			values := make([]string, len(texts))
			for j, text := range texts {
				text = strings.ReplaceAll(text, RepeatRowMarker, "")
				values[j] = Substitute(text, fields)
			}
			if columns > 0 && len(values) > columns {
				values = values[:columns]
			}
			exp.rows = append(exp.rows, values)
		}
		plan = append(plan, exp)
	}

	// From last to first so removal does not shift rows still waiting
	for k := len(plan) - 1; k >= 0; k-- {
		exp := plan[k]
		tbl.RemoveRow(exp.index)
		r.tracef(color.FgHiYellow, "REMOVE ROW: %d", exp.index)

		for n, values := range exp.rows {
			tbl.InsertRow(exp.index+n, exp.template, values)
			r.tracef(color.FgHiBlue, "CLONE ROW: %d %q", exp.index+n, values)
		}
	}

	return len(plan)
}
