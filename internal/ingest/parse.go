package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
)

// componentColumn marks each row with the waveform component it was derived
// from. Only the geometric-mean surface component is ingested; borehole and
// per-axis rows are discarded at parse time.
const componentColumn = "component"

// surfaceComponent is the retained component value.
const surfaceComponent = "geom"

// IMFile is one parsed simulation results file, already restricted to
// surface rows. Row value slices align with Measures.
type IMFile struct {
	Measures []string
	Rows     []IMRow
}

// IMRow is one station's measures within a simulation.
type IMRow struct {
	Station string
	Values  []float64
}

// ParseIMFile reads a per-simulation CSV: first column station name, a
// component column, and one column per measure. The measure set is the
// header minus the station and component columns.
func ParseIMFile(path string) (*IMFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	return parseIM(f, path)
}

func parseIM(r io.Reader, path string) (*IMFile, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read header of %s", path)
	}
	if len(header) < 3 {
		return nil, eris.Errorf("ingest: %s: header has %d columns, want station, component, and measures", path, len(header))
	}

	componentIdx := -1
	var measures []string
	measureIdx := make([]int, 0, len(header)-2)
	for i, col := range header[1:] {
		if col == componentColumn {
			componentIdx = i + 1
			continue
		}
		measures = append(measures, col)
		measureIdx = append(measureIdx, i+1)
	}
	if componentIdx < 0 {
		return nil, eris.Errorf("ingest: %s: missing %s column", path, componentColumn)
	}

	file := &IMFile{Measures: measures}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: read %s line %d", path, line)
		}
		if rec[componentIdx] != surfaceComponent {
			continue
		}

		row := IMRow{Station: rec[0], Values: make([]float64, len(measures))}
		for c, idx := range measureIdx {
			v, err := strconv.ParseFloat(rec[idx], 64)
			if err != nil {
				return nil, eris.Wrapf(err, "ingest: parse %s line %d column %s", path, line, measures[c])
			}
			row.Values[c] = v
		}
		file.Rows = append(file.Rows, row)
	}

	return file, nil
}
