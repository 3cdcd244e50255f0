// Package query reconstructs per-station measure tables from the store,
// memoizing each result as a CSV cache entry next to the database file.
package query

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quakecore/imdb-cli/internal/model"
	"github.com/quakecore/imdb-cli/internal/observability"
	"github.com/quakecore/imdb-cli/internal/store"
)

// Engine answers station queries against an open store.
type Engine struct {
	store   *store.Store
	cache   *Cache
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// New creates an Engine whose cache directory is derived from the store's
// database path.
func New(st *store.Store, metrics *observability.Metrics) *Engine {
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Engine{
		store:   st,
		cache:   NewCache(CacheDir(st.Path())),
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
	}
}

// StationIMs returns the full measure-by-simulation table for a station,
// optionally projected to a single measure (im == "" means all). A cached
// result is authoritative and served without touching the store.
func (e *Engine) StationIMs(ctx context.Context, station, im string, nproc int) (*model.StationTable, error) {
	if cached, err := e.cache.Load(station); err != nil {
		return nil, err
	} else if cached != nil {
		e.metrics.QueryCache.WithLabelValues("hit").Inc()
		return project(cached, im)
	}
	e.metrics.QueryCache.WithLabelValues("miss").Inc()

	start := e.clock.Now()
	table, err := e.rebuild(ctx, station, nproc)
	if err != nil {
		return nil, err
	}
	e.metrics.QueryDuration.Observe(e.clock.Since(start).Seconds())

	if err := e.cache.Store(station, table); err != nil {
		return nil, err
	}
	return project(table, im)
}

// rebuild reconstructs a station's table with one parallel read per measure.
func (e *Engine) rebuild(ctx context.Context, station string, nproc int) (*model.StationTable, error) {
	st, err := e.store.StationByName(ctx, station)
	if err != nil {
		return nil, err
	}

	measures, err := e.store.Measures(ctx)
	if err != nil {
		return nil, err
	}
	if len(measures) == 0 {
		return nil, eris.Wrap(model.ErrEmptyMeasureSet, "query: store has no measure registry")
	}

	nSim, err := e.store.CountValues(ctx, measures[0], st.ID)
	if err != nil {
		return nil, err
	}

	if nproc <= 0 || nproc > len(measures) {
		nproc = len(measures)
	}
	cols := make([][]store.SimValue, len(measures))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(nproc)
	for c, im := range measures {
		c, im := c, im
		g.Go(func() error {
			vals, err := e.store.ValuesAt(gctx, im, st.ID)
			if err != nil {
				return err
			}
			cols[c] = vals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrapf(err, "query: fan-out for station %s", station)
	}

	// Every measure table must agree on which simulations cover this
	// station; a disagreement means the store is inconsistent.
	simIDs := make([]int64, len(cols[0]))
	for r, sv := range cols[0] {
		simIDs[r] = sv.SimulationID
	}
	if len(simIDs) != nSim {
		return nil, eris.Wrapf(model.ErrTableMismatch,
			"query: measure %s has %d rows for station %s, counted %d", measures[0], len(simIDs), station, nSim)
	}
	for c := 1; c < len(cols); c++ {
		if len(cols[c]) != len(simIDs) {
			return nil, eris.Wrapf(model.ErrTableMismatch,
				"query: measure %s has %d rows for station %s, want %d", measures[c], len(cols[c]), station, len(simIDs))
		}
		for r := range cols[c] {
			if cols[c][r].SimulationID != simIDs[r] {
				return nil, eris.Wrapf(model.ErrTableMismatch,
					"query: measure %s row %d is simulation %d, want %d", measures[c], r, cols[c][r].SimulationID, simIDs[r])
			}
		}
	}

	simNames, err := e.store.SimulationNames(ctx, simIDs)
	if err != nil {
		return nil, err
	}
	if len(simNames) != len(simIDs) {
		return nil, eris.Wrapf(model.ErrTableMismatch,
			"query: resolved %d simulation names for station %s, want %d", len(simNames), station, len(simIDs))
	}

	values := make([][]float64, len(simIDs))
	for r := range simIDs {
		values[r] = make([]float64, len(measures))
		for c := range measures {
			values[r][c] = cols[c][r].Value
		}
	}

	return &model.StationTable{
		Measures:    measures,
		Simulations: simNames,
		Values:      values,
	}, nil
}

// FillCache warms the cache entry of every registered station. Stations are
// processed sequentially; each rebuild fans out internally.
func (e *Engine) FillCache(ctx context.Context, nproc int) error {
	stations, err := e.store.AllStations(ctx)
	if err != nil {
		return err
	}
	log := zap.L().With(zap.String("cache_dir", e.cache.Dir()))
	for _, st := range stations {
		if _, err := e.StationIMs(ctx, st.Name, "", nproc); err != nil {
			return eris.Wrapf(err, "query: fill cache for station %s", st.Name)
		}
	}
	log.Info("cache filled", zap.Int("stations", len(stations)))
	return nil
}

func project(table *model.StationTable, im string) (*model.StationTable, error) {
	if im == "" {
		return table, nil
	}
	return table.Project(im)
}
