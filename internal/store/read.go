package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/quakecore/imdb-cli/internal/model"
)

// SimValue is one (simulation, value) pair read from a measure's table.
type SimValue struct {
	SimulationID int64
	Value        float64
}

// Measures lists measure names in registration order.
func (s *Store) Measures(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT im_name FROM ims ORDER BY rowid`)
	if err != nil {
		return nil, eris.Wrap(err, "store: list measures")
	}
	defer rows.Close()

	var ims []string
	for rows.Next() {
		var im string
		if err := rows.Scan(&im); err != nil {
			return nil, eris.Wrap(err, "store: scan measure")
		}
		ims = append(ims, im)
	}
	return ims, eris.Wrap(rows.Err(), "store: iterate measures")
}

// StationByName looks up one station. Returns model.ErrStationNotFound for
// unknown names.
func (s *Store) StationByName(ctx context.Context, name string) (*model.Station, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, longitude, latitude FROM stations WHERE name = ?`, name)
	return scanStation(row, name)
}

// StationByID looks up one station by identity.
func (s *Store) StationByID(ctx context.Context, id int64) (*model.Station, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, longitude, latitude FROM stations WHERE id = ?`, id)
	return scanStation(row, "")
}

func scanStation(row *sql.Row, name string) (*model.Station, error) {
	var st model.Station
	err := row.Scan(&st.ID, &st.Name, &st.Lon, &st.Lat)
	if err == sql.ErrNoRows {
		if name != "" {
			return nil, eris.Wrapf(model.ErrStationNotFound, "store: station %s", name)
		}
		return nil, eris.Wrap(model.ErrStationNotFound, "store: station by id")
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan station")
	}
	return &st, nil
}

// AllStations returns every registered station in identity order.
func (s *Store) AllStations(ctx context.Context) ([]model.Station, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, longitude, latitude FROM stations ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "store: list stations")
	}
	defer rows.Close()

	var stations []model.Station
	for rows.Next() {
		var st model.Station
		if err := rows.Scan(&st.ID, &st.Name, &st.Lon, &st.Lat); err != nil {
			return nil, eris.Wrap(err, "store: scan station")
		}
		stations = append(stations, st)
	}
	return stations, eris.Wrap(rows.Err(), "store: iterate stations")
}

// SimulationNames resolves identities to names, ordered by ascending
// identity.
func (s *Store) SimulationNames(ctx context.Context, ids []int64) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM simulations WHERE id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: resolve simulation names")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "store: scan simulation name")
		}
		names = append(names, name)
	}
	return names, eris.Wrap(rows.Err(), "store: iterate simulation names")
}

// CountSimulations returns the number of registered simulations.
func (s *Store) CountSimulations(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM simulations`).Scan(&n)
	return n, eris.Wrap(err, "store: count simulations")
}

// CountValues returns how many simulations recorded im at a station.
func (s *Store) CountValues(ctx context.Context, im string, stationID int64) (int, error) {
	if err := validateIMName(im); err != nil {
		return 0, err
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+quoteIdent(im)+` WHERE station_id = ?`, stationID).Scan(&n)
	return n, eris.Wrapf(err, "store: count %s values", im)
}

// ValuesAt reads the (simulation, value) pairs of one measure at one
// station, ordered by ascending simulation identity. Safe to call from
// concurrent readers; each call runs on its own pooled connection.
func (s *Store) ValuesAt(ctx context.Context, im string, stationID int64) ([]SimValue, error) {
	if err := validateIMName(im); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT simulation_id, value FROM `+quoteIdent(im)+
			` WHERE station_id = ? ORDER BY simulation_id`, stationID)
	if err != nil {
		return nil, eris.Wrapf(err, "store: read %s values", im)
	}
	defer rows.Close()

	var vals []SimValue
	for rows.Next() {
		var sv SimValue
		if err := rows.Scan(&sv.SimulationID, &sv.Value); err != nil {
			return nil, eris.Wrapf(err, "store: scan %s value", im)
		}
		vals = append(vals, sv)
	}
	return vals, eris.Wrapf(rows.Err(), "store: iterate %s values", im)
}
