package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/quakecore/imdb-cli/internal/model"
)

// RegisterStation returns the identity of name, inserting it on first
// reference. Registration is idempotent within a build: a name seen before
// reuses the identity assigned the first time, regardless of coordinates.
func (s *Store) RegisterStation(ctx context.Context, name string, lon, lat float64) (int64, error) {
	if id, ok := s.stationIDs[name]; ok {
		return id, nil
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO stations (name, longitude, latitude) VALUES (?, ?, ?)`,
		name, lon, lat,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "store: insert station %s", name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, eris.Wrap(err, "store: station id")
	}
	s.stationIDs[name] = id
	return id, nil
}

// RegisteredStations reports how many stations this build has assigned
// identities to.
func (s *Store) RegisteredStations() int {
	return len(s.stationIDs)
}

// RegisterSimulation assigns a fresh identity to a simulation. Simulation
// names are expected unique across the build; a repeat name is a naming
// collision in the source tree and fails rather than merging.
func (s *Store) RegisterSimulation(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO simulations (name) VALUES (?)`, name)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, eris.Wrapf(model.ErrDuplicateSimulation, "store: simulation %s", name)
		}
		return 0, eris.Wrapf(err, "store: insert simulation %s", name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, eris.Wrap(err, "store: simulation id")
	}
	return id, nil
}

// InsertValues writes one batch of measurements into a measure's value
// table inside a single transaction.
func (s *Store) InsertValues(ctx context.Context, im string, rows []model.ValueRow) error {
	if err := validateIMName(im); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin insert tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+quoteIdent(im)+` (station_id, simulation_id, value) VALUES (?, ?, ?)`)
	if err != nil {
		return eris.Wrapf(err, "store: prepare insert %s", im)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.StationID, row.SimulationID, row.Value); err != nil {
			return eris.Wrapf(err, "store: insert %s value for station %d simulation %d",
				im, row.StationID, row.SimulationID)
		}
	}

	return eris.Wrapf(tx.Commit(), "store: commit insert %s", im)
}
