// Package store persists intensity measures in a single SQLite file.
//
// The schema is dynamic: besides the fixed ims, stations, and simulations
// registries there is one value table per measure, named after the measure
// itself and keyed by (station_id, simulation_id). The measure set is fixed
// at creation time and cannot grow afterwards.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/quakecore/imdb-cli/internal/model"
)

// Store wraps a SQLite intensity-measure database. During a build it also
// owns the in-memory station registry; there is exactly one writer.
type Store struct {
	db   *sql.DB
	path string

	// stationIDs mirrors the stations table within a build so repeated
	// registrations of the same name reuse the assigned identity.
	stationIDs map[string]int64
}

// validIMName is an allowlist for measure names interpolated into DDL and
// query text. Anything else would be an injection vector through the value
// table names.
var validIMName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.]*$`)

// reservedTables are fixed schema tables a measure may not shadow.
var reservedTables = map[string]bool{
	"ims":         true,
	"stations":    true,
	"simulations": true,
}

func validateIMName(im string) error {
	if !validIMName.MatchString(im) || reservedTables[im] {
		return eris.Errorf("store: invalid measure name %q", im)
	}
	return nil
}

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return db, nil
}

// Create builds a fresh store at path. Any existing database file is
// discarded first: the store has no support for incremental updates.
// The measure set must be non-empty and is immutable after creation.
func Create(ctx context.Context, path string, measures []string) (*Store, error) {
	if len(measures) == 0 {
		return nil, eris.Wrap(model.ErrEmptyMeasureSet, "store: create")
	}
	for _, im := range measures {
		if err := validateIMName(im); err != nil {
			return nil, err
		}
	}

	for _, stale := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
			return nil, eris.Wrapf(err, "store: remove %s", stale)
		}
	}

	db, err := open(path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, path: path, stationIDs: make(map[string]int64)}
	if err := s.initSchema(ctx, measures); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Open attaches to an existing store for reading.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrapf(err, "store: stat %s", path)
	}
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, path: path, stationIDs: make(map[string]int64)}, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	return s.db.Close()
}

const registryDDL = `
CREATE TABLE ims (
	im_name TEXT NOT NULL UNIQUE
);

CREATE TABLE stations (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	name      TEXT NOT NULL UNIQUE,
	longitude FLOAT NOT NULL,
	latitude  FLOAT NOT NULL
);

CREATE TABLE simulations (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
`

func (s *Store) initSchema(ctx context.Context, measures []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin schema tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, registryDDL); err != nil {
		return eris.Wrap(err, "store: create registries")
	}

	for _, im := range measures {
		if _, err := tx.ExecContext(ctx, `INSERT INTO ims (im_name) VALUES (?)`, im); err != nil {
			return eris.Wrapf(err, "store: insert measure %s", im)
		}
		ddl := fmt.Sprintf(`CREATE TABLE %s (
			station_id    INTEGER,
			simulation_id INTEGER,
			value         FLOAT NOT NULL,
			FOREIGN KEY(station_id) REFERENCES stations(id),
			FOREIGN KEY(simulation_id) REFERENCES simulations(id)
		)`, quoteIdent(im))
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return eris.Wrapf(err, "store: create value table %s", im)
		}
		idx := fmt.Sprintf(`CREATE UNIQUE INDEX %s ON %s (station_id, simulation_id)`,
			quoteIdent("idx_"+im+"_station_sim"), quoteIdent(im))
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return eris.Wrapf(err, "store: index value table %s", im)
		}
	}

	return eris.Wrap(tx.Commit(), "store: commit schema")
}

// quoteIdent double-quotes an identifier that already passed validateIMName.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
