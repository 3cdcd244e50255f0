package ingest

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// ParseStationFile reads a station-location list with one station per line:
// longitude, latitude, name, whitespace separated. Blank lines are skipped.
// The returned coordinates are (lon, lat).
func ParseStationFile(path string) (map[string]geom.Coord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open station file %s", path)
	}
	defer f.Close()

	locs := make(map[string]geom.Coord)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, eris.Errorf("ingest: %s line %d: want 'lon lat name', got %d fields", path, line, len(fields))
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: %s line %d: longitude", path, line)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: %s line %d: latitude", path, line)
		}
		locs[fields[2]] = geom.Coord{lon, lat}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "ingest: scan station file %s", path)
	}
	return locs, nil
}
