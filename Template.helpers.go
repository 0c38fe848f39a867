package docxfill

import (
	"archive/zip"
	"fmt"
)

// zip file by name
func (t *Template) file(fname string) *zip.File {
	for _, f := range t.files {
		if f.Name == fname {
			return f
		}
	}
	return nil
}

// Convert given file (from template.files) to struct of xml nodes
func (t *Template) fileToXMLStruct(fname string) (*xmlNode, error) {
	f := t.file(fname)
	if f == nil {
		return nil, fmt.Errorf("%s not found", fname)
	}

	fr, err := f.Open()
	if err != nil {
		return nil, err
	}
	buf, err := readerBytes(fr)
	if err != nil {
		return nil, err
	}

	return bytesToXMLStruct(buf)
}

// Convert given bytes to struct of xml nodes
func bytesToXMLStruct(buf []byte) (*xmlNode, error) {
	xdocNode, err := parseXMLNodes(buf)
	if err != nil {
		return nil, fmt.Errorf("xml: %w", err)
	}
	return xdocNode, nil
}
