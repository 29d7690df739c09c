package core

// streaming.go writes export rows as CSV one row at a time.
//
// Output is buffered until the first flush. It starts with a
// UTF-8 byte-order mark so spreadsheet tools pick the right encoding, and
// uses CRLF line endings with RFC 4180 quoting.

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// utf8BOM is written before the header row.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvFlushInterval is how many rows are buffered before flushing.
const csvFlushInterval = 500

// flusher is satisfied by http.ResponseWriter implementations that support
// chunked transfer.
type flusher interface {
	Flush()
}

// CSVWriter streams export rows to an io.Writer.
type CSVWriter struct {
	dst       io.Writer
	buf       *bufio.Writer
	csv       *csv.Writer
	columns   int
	rows      int
	hasHeader bool
}

// NewCSVWriter creates a writer. Nothing reaches w until the first Flush.
func NewCSVWriter(w io.Writer) *CSVWriter {
	buf := bufio.NewWriterSize(w, 64*1024)
	cw := csv.NewWriter(buf)
	// Applies inside quoted cells too; FormatText emits LF-only line breaks.
	cw.UseCRLF = true
	return &CSVWriter{dst: w, buf: buf, csv: cw}
}

// WriteHeader writes the byte-order mark and the label row.
func (c *CSVWriter) WriteHeader(labels []FieldLabel) error {
	if c.hasHeader {
		return fmt.Errorf("csv header already written")
	}
	if _, err := c.buf.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	record := make([]string, len(labels))
	for i, l := range labels {
		record[i] = l.Label
	}
	if err := c.csv.Write(record); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	c.columns = len(labels)
	c.hasHeader = true
	return nil
}

// WriteRow writes one data row.
func (c *CSVWriter) WriteRow(row ExportRow) error {
	if !c.hasHeader {
		return fmt.Errorf("csv row written before header")
	}
	if len(row.Cells) != c.columns {
		return fmt.Errorf("row for facility %d has %d cells, header has %d", row.FacilityID, len(row.Cells), c.columns)
	}
	if err := c.csv.Write(row.Values()); err != nil {
		return fmt.Errorf("write row: %w", err)
	}

	c.rows++
	if c.rows%csvFlushInterval == 0 {
		return c.Flush()
	}
	return nil
}

// Flush writes buffered data to the destination and, when supported,
// flushes the destination itself.
func (c *CSVWriter) Flush() error {
	c.csv.Flush()
	if err := c.csv.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := c.buf.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if f, ok := c.dst.(flusher); ok {
		f.Flush()
	}
	return nil
}

// Rows returns the number of data rows written.
func (c *CSVWriter) Rows() int {
	return c.rows
}

// SerializeCSV renders rows under labels as a complete CSV document.
func SerializeCSV(rows []ExportRow, labels []FieldLabel) ([]byte, error) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	if err := w.WriteHeader(labels); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.WriteRow(r); err != nil {
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
