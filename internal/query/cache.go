package query

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/rotisserie/eris"

	"github.com/quakecore/imdb-cli/internal/model"
)

// CacheDir returns the cache directory for a database file: one sibling
// directory of per-station CSVs.
func CacheDir(dbPath string) string {
	return dbPath + "_stations"
}

// Cache persists per-station query results as CSV files. Writes are atomic
// renames, so two queries racing to cache the same station both succeed and
// the last rename wins with identical content.
type Cache struct {
	dir string
}

func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) Dir() string { return c.dir }

func (c *Cache) path(station string) string {
	return filepath.Join(c.dir, station+".csv")
}

// Load returns the cached table for a station, or nil if none exists.
func (c *Cache) Load(station string) (*model.StationTable, error) {
	f, err := os.Open(c.path(station))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: open entry for %s", station)
	}
	defer f.Close()

	table, err := model.ReadStationTable(f)
	if err != nil {
		return nil, eris.Wrapf(err, "cache: entry for %s", station)
	}
	return table, nil
}

// Store writes a station's table atomically.
func (c *Cache) Store(station string, table *model.StationTable) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return eris.Wrapf(err, "cache: mkdir %s", c.dir)
	}
	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		return err
	}
	if err := renameio.WriteFile(c.path(station), buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "cache: write entry for %s", station)
	}
	return nil
}
