package docxfill

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
)

// Part of docx package holding document body
const mainDocumentName = "word/document.xml"

// Template - opened docx template
type Template struct {
	path string

	// all zip files in original order so we can build it again
	files []*zip.File

	// parsed main document, changed by Render
	doc *xmlDocument

	// Debug prints every render step to stderr
	Debug bool
}

// OpenTemplate - open docx template from file
func OpenTemplate(docpath string) (*Template, error) {
	buf, err := os.ReadFile(docpath) // #nosec G304 - template path is given by caller
	if err != nil {
		return nil, &DocumentError{Operation: "open", Path: docpath, Cause: err}
	}

	t, err := OpenTemplateWithBytes(buf)
	if err != nil {
		return nil, err
	}
	t.path = docpath
	return t, nil
}

// OpenTemplateWithURL - download docx template and open it
func OpenTemplateWithURL(ctx context.Context, tplURL string) (*Template, error) {
	buf, err := DefaultDownloader.Download(ctx, tplURL)
	if err != nil {
		return nil, &DocumentError{Operation: "download", Path: tplURL, Cause: err}
	}

	t, err := OpenTemplateWithBytes(buf)
	if err != nil {
		return nil, err
	}
	t.path = tplURL
	return t, nil
}

// OpenTemplateWithBytes - open docx template from bytes
func OpenTemplateWithBytes(buf []byte) (*Template, error) {
	zipr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, &DocumentError{Operation: "unzip", Cause: err}
	}

	t := &Template{
		files: zipr.File,
	}

	if t.MainDocument() == nil {
		return nil, &DocumentError{Operation: "open", Path: mainDocumentName, Cause: fmt.Errorf("mandatory part not found")}
	}

	root, err := t.fileToXMLStruct(mainDocumentName)
	if err != nil {
		return nil, &DocumentError{Operation: "parse", Path: mainDocumentName, Cause: err}
	}
	t.doc = &xmlDocument{root: root}

	return t, nil
}

// MainDocument ..
func (t *Template) MainDocument() *zip.File {
	return t.file(mainDocumentName)
}

// Path - where template was opened from, empty for bytes
func (t *Template) Path() string {
	return t.path
}

// Document - parsed main document
func (t *Template) Document() Document {
	return t.doc
}

// Render - fill template with record
// "Hello {{Name}}!" --> "Hello World!"
func (t *Template) Render(rec Record) error {
	var opts RenderOptions
	if t.Debug {
		opts.Trace = os.Stderr
	}
	return RenderWith(t.doc, rec, opts)
}

// Params - fill template with any value: Record, map, struct or JSON
func (t *Template) Params(v any) error {
	rec, err := NewRecord(v)
	if err != nil {
		return err
	}
	return t.Render(rec)
}

// Plaintext - document text, one paragraph or table row per line
func (t *Template) Plaintext() string {
	return t.doc.Plaintext()
}

// Write - build docx archive again with modified document
func (t *Template) Write(w io.Writer) error {
	zipw := zip.NewWriter(w)

	// Loop existing files to build docx archive again
	for _, f := range t.files {
		if f.Name != mainDocumentName {
			if err := zipw.Copy(f); err != nil {
				return &DocumentError{Operation: "write", Path: f.Name, Cause: err}
			}
			continue
		}

		fw, err := zipw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return &DocumentError{Operation: "write", Path: f.Name, Cause: err}
		}
		if _, err := fw.Write(t.doc.root.Bytes()); err != nil {
			return &DocumentError{Operation: "write", Path: f.Name, Cause: err}
		}
	}

	if err := zipw.Close(); err != nil {
		return &DocumentError{Operation: "write", Cause: err}
	}
	return nil
}

// Bytes - docx archive as bytes
func (t *Template) Bytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := t.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportDocx - save new/modified docx based on template
func (t *Template) ExportDocx(path string) error {
	fDocx, err := os.Create(path) // #nosec G304 - export path is given by caller
	if err != nil {
		return &DocumentError{Operation: "export", Path: path, Cause: err}
	}

	if err := t.Write(fDocx); err != nil {
		fDocx.Close() // #nosec G104 - write error is more important
		return err
	}

	if err := fDocx.Close(); err != nil {
		return &DocumentError{Operation: "export", Path: path, Cause: err}
	}
	return nil
}
