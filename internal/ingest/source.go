package ingest

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadflow/internal/fetcher"
)

// ErrUnsupportedFormat is returned when an upload's extension is
// neither .csv nor .xlsx. Match with errors.Is.
var ErrUnsupportedFormat = eris.New("unsupported upload format")

// DecodeSource reads an entire tabular source into ordered rows keyed
// by the header line. The format is chosen by the filename extension.
// Decoder failures abort the import before any rows are produced.
func DecodeSource(r io.Reader, filename string) ([]Row, error) {
	var table [][]string

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err := fetcher.ReadCSV(r, fetcher.CSVOptions{})
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: parse %s", filename)
		}
		table = rows
	case ".xlsx":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: read %s", filename)
		}
		rows, err := fetcher.ReadXLSX(data, fetcher.XLSXOptions{})
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: parse %s", filename)
		}
		table = rows
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "ingest: %s", filename)
	}

	if len(table) == 0 {
		return nil, nil
	}

	header := table[0]
	rows := make([]Row, 0, len(table)-1)
	for _, record := range table[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
