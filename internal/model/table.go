package model

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
)

// StationTable is the full query result for one station: one column per
// measure, one row per simulation. Rows are ordered by ascending simulation
// identity, which is the order the store returns them in.
type StationTable struct {
	Measures    []string    // column labels
	Simulations []string    // row labels
	Values      [][]float64 // Values[row][col]
}

// Column returns the values of a single measure across all simulations.
func (t *StationTable) Column(im string) ([]float64, error) {
	for c, name := range t.Measures {
		if name != im {
			continue
		}
		col := make([]float64, len(t.Values))
		for r := range t.Values {
			col[r] = t.Values[r][c]
		}
		return col, nil
	}
	return nil, eris.Wrapf(ErrMeasureNotFound, "table: column %s", im)
}

// Project returns a single-measure view of the table.
func (t *StationTable) Project(im string) (*StationTable, error) {
	col, err := t.Column(im)
	if err != nil {
		return nil, err
	}
	values := make([][]float64, len(col))
	for r, v := range col {
		values[r] = []float64{v}
	}
	return &StationTable{
		Measures:    []string{im},
		Simulations: t.Simulations,
		Values:      values,
	}, nil
}

// WriteCSV serializes the table with measure names as the header row and
// simulation names as the leading cell of each data row. The top-left cell
// is left empty.
func (t *StationTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.Measures)+1)
	header = append(header, "")
	header = append(header, t.Measures...)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "table: write header")
	}

	row := make([]string, len(t.Measures)+1)
	for r, sim := range t.Simulations {
		row[0] = sim
		for c, v := range t.Values[r] {
			row[c+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "table: write row %s", sim)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "table: flush")
}

// ReadStationTable parses a table previously written by WriteCSV.
func ReadStationTable(r io.Reader) (*StationTable, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "table: read csv")
	}
	if len(records) == 0 {
		return nil, eris.New("table: empty csv")
	}

	t := &StationTable{Measures: records[0][1:]}
	for _, rec := range records[1:] {
		if len(rec) != len(t.Measures)+1 {
			return nil, eris.Errorf("table: row %s has %d cells, want %d", rec[0], len(rec)-1, len(t.Measures))
		}
		vals := make([]float64, len(t.Measures))
		for c, cell := range rec[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "table: parse cell %s/%s", rec[0], t.Measures[c])
			}
			vals[c] = v
		}
		t.Simulations = append(t.Simulations, rec[0])
		t.Values = append(t.Values, vals)
	}
	return t, nil
}
