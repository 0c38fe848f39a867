package docxfill

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
)

// read all and close reader
func readerBytes(rdr io.ReadCloser) ([]byte, error) {
	if rdr == nil {
		return nil, errors.New("can't read bytes from empty reader")
	}

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(rdr); err != nil {
		if cerr := rdr.Close(); cerr != nil {
			log.Printf("can't close reader: %s", cerr)
		}
		return nil, fmt.Errorf("can't read bytes: %w", err)
	}

	if err := rdr.Close(); err != nil {
		return nil, fmt.Errorf("can't close reader: %w", err)
	}

	return buf.Bytes(), nil
}
