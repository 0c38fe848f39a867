package docxfill

// TextUnit - paragraph or table cell with readable/writable text
type TextUnit interface {
	Text() string
	SetText(text string)
}

// Row - table row, fixed width list of cells
type Row interface {
	Cells() []TextUnit
}

// Table - ordered rows of one table.
// Row indexes are positions in Rows() at the time of the call.
type Table interface {
	Rows() []Row
	ColumnCount() int
	RemoveRow(index int)

	// InsertRow adds a new row at index shaped like template row
	// (template may already be removed from table) and fills its cells
	// with given texts. Cells without a text are left empty.
	InsertRow(index int, template Row, cells []string) Row
}

// Document - everything renderer needs from a parsed template.
// Any document model exposing these operations can be rendered.
type Document interface {
	Paragraphs() []TextUnit
	Tables() []Table
}
