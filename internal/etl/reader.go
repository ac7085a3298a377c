package etl

import (
	"encoding/csv"
	stderrors "errors"
	"io"
	"os"

	"github.com/pkg/errors"
)

// CSVReader streams one source file in chunks of at most chunkSize rows, so
// peak memory is bounded by the chunk size rather than the file size. A line
// with the wrong column count (or other parse defect) is skipped and counted,
// never aborting the file.
type CSVReader struct {
	file      *os.File
	reader    *csv.Reader
	header    []string
	chunkSize int
}

// NewCSVReader opens the file and consumes the header row, which defines the
// column names for every subsequent record.
func NewCSVReader(path string, chunkSize int) (*CSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening source file %s", path)
	}

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "reading header of %s", path)
	}

	cols := make([]string, len(header))
	copy(cols, header)

	return &CSVReader{
		file:      f,
		reader:    r,
		header:    cols,
		chunkSize: chunkSize,
	}, nil
}

// Header returns the column names from the file's header row.
func (c *CSVReader) Header() []string {
	return c.header
}

// Next reads up to chunkSize rows. It returns the rows together with the
// number of malformed lines skipped while filling the chunk. An empty result
// with zero skips signals end of file.
func (c *CSVReader) Next() ([]RawRow, int64, error) {
	var rows []RawRow
	var malformed int64

	for len(rows) < c.chunkSize {
		record, err := c.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if stderrors.As(err, &parseErr) {
				malformed++
				continue
			}
			return rows, malformed, errors.Wrap(err, "reading source file")
		}

		row := make(RawRow, len(c.header))
		for i, col := range c.header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, malformed, nil
}

func (c *CSVReader) Close() error {
	return c.file.Close()
}
