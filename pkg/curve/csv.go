package curve

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// headerRows is the number of leading rows skipped in uploaded files: the
// instrument writes a title row followed by a column-header row before the
// data starts.
const headerRows = 2

// ReadCSV parses an uploaded two-column CSV file into a Curve. The first two
// rows are skipped (title and header), and the first two columns of each
// remaining row are parsed as x and y. Rows must carry at least two columns;
// a file with no data rows is a shape error.
func ReadCSV(r io.Reader) (Curve, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // column counts are validated per row

	var c Curve
	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Curve{}, fmt.Errorf("failed to read CSV row %d: %w", row, err)
		}
		row++
		if row <= headerRows {
			continue
		}

		if len(record) < 2 {
			return Curve{}, fmt.Errorf("row %d: %w", row, ErrTooFewColumns)
		}

		x, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return Curve{}, fmt.Errorf("row %d: invalid x value %q: %w", row, record[0], err)
		}
		y, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return Curve{}, fmt.Errorf("row %d: invalid y value %q: %w", row, record[1], err)
		}

		c.X = append(c.X, x)
		c.Y = append(c.Y, y)
	}

	if c.Len() == 0 {
		return Curve{}, ErrEmptyCurve
	}

	return c, nil
}
