// Package ingest builds the intensity-measure store from per-simulation CSV
// files found under a runs directory.
//
// Parsing is the only parallel phase: up to NProc files are parsed in
// background workers ahead of a single sequential commit loop. The commit
// loop drains parse results strictly in discovery order, so identity
// assignment never depends on worker scheduling, and tops the prefetch
// window back up before committing each file.
package ingest

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/quakecore/imdb-cli/internal/model"
	"github.com/quakecore/imdb-cli/internal/observability"
	"github.com/quakecore/imdb-cli/internal/runsdir"
	"github.com/quakecore/imdb-cli/internal/store"
)

// Options configures one build.
type Options struct {
	RunsDir     string
	StationFile string
	DBFile      string

	// NProc is the parse worker count and prefetch window size. Minimum 1.
	NProc int

	Clock   clockwork.Clock
	Metrics *observability.Metrics
}

// Result summarizes a completed build.
type Result struct {
	BuildID           string
	Files             int
	Committed         int
	SkippedNoStations int
	SkippedParse      int
	Stations          int
	Rows              int
	Elapsed           time.Duration
}

type parseOutcome struct {
	file *IMFile
	err  error
}

// Build ingests every IM CSV under opts.RunsDir into a freshly created
// store at opts.DBFile. A parse failure on the first file is fatal since the
// measure set comes from its header; later parse failures skip the file.
func Build(ctx context.Context, opts Options) (*Result, error) {
	if opts.NProc < 1 {
		opts.NProc = 1
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}

	res := &Result{BuildID: uuid.New().String()}
	log := zap.L().With(zap.String("build_id", res.BuildID), zap.String("db", opts.DBFile))
	start := clock.Now()

	locs, err := ParseStationFile(opts.StationFile)
	if err != nil {
		return nil, err
	}

	csvs, err := filepath.Glob(runsdir.IMCalcGlob(opts.RunsDir))
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: glob %s", opts.RunsDir)
	}
	if len(csvs) == 0 {
		return nil, eris.Errorf("ingest: no IM CSV files under %s", opts.RunsDir)
	}
	res.Files = len(csvs)
	log.Info("discovered source files",
		zap.Int("files", len(csvs)), zap.Int("nproc", opts.NProc))

	// Cancelling here tears down any parse still in flight when the commit
	// loop aborts early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]chan parseOutcome, len(csvs))
	launch := func(i int) {
		if i >= len(csvs) {
			return
		}
		ch := make(chan parseOutcome, 1)
		results[i] = ch
		go func() {
			if err := ctx.Err(); err != nil {
				ch <- parseOutcome{err: eris.Wrap(err, "ingest: parse cancelled")}
				return
			}
			parseStart := clock.Now()
			file, err := ParseIMFile(csvs[i])
			metrics.ParseDuration.Observe(clock.Since(parseStart).Seconds())
			ch <- parseOutcome{file: file, err: err}
		}()
	}
	for i := 0; i < opts.NProc && i < len(csvs); i++ {
		launch(i)
	}

	var st *store.Store
	defer func() {
		if st != nil {
			st.Close()
		}
	}()

	for i, csvPath := range csvs {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "ingest: cancelled")
		}

		out := <-results[i]
		results[i] = nil
		// Keep the prefetch window full before committing this file.
		launch(i + opts.NProc)

		sim := runsdir.SimulationName(csvPath)

		if i == 0 {
			if out.err != nil {
				return nil, eris.Wrap(out.err, "ingest: first file sets the measure schema")
			}
			st, err = store.Create(ctx, opts.DBFile, out.file.Measures)
			if err != nil {
				return nil, err
			}
			log.Info("created store", zap.Int("measures", len(out.file.Measures)))
		} else if out.err != nil {
			log.Warn("skipping unparseable file",
				zap.String("simulation", sim), zap.Error(out.err))
			metrics.FilesSkipped.WithLabelValues("parse_error").Inc()
			res.SkippedParse++
			continue
		}

		if err := commit(ctx, st, out.file, sim, locs, metrics, res); err != nil {
			return nil, err
		}
		log.Info("csv committed",
			zap.Int("n", i+1), zap.Int("of", len(csvs)), zap.String("simulation", sim))
	}

	res.Stations = st.RegisteredStations()
	res.Elapsed = clock.Since(start)
	log.Info("csv loading complete",
		zap.Int("committed", res.Committed),
		zap.Int("skipped_no_stations", res.SkippedNoStations),
		zap.Int("skipped_parse", res.SkippedParse),
		zap.Int("stations", res.Stations),
		zap.Int("rows", res.Rows),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// commit is the single-threaded write step: it registers the simulation and
// its stations of interest, then inserts one row per (measure, station).
// A file with no stations of interest is skipped entirely and creates no
// simulation entity.
func commit(
	ctx context.Context,
	st *store.Store,
	file *IMFile,
	sim string,
	locs map[string]geom.Coord,
	metrics *observability.Metrics,
	res *Result,
) error {
	retained := file.Rows[:0:0]
	for _, row := range file.Rows {
		if _, ok := locs[row.Station]; ok {
			retained = append(retained, row)
		}
	}
	if len(retained) == 0 {
		zap.L().Info("simulation contains no stations of interest", zap.String("simulation", sim))
		metrics.FilesSkipped.WithLabelValues("no_stations").Inc()
		res.SkippedNoStations++
		return nil
	}

	simID, err := st.RegisterSimulation(ctx, sim)
	if err != nil {
		return err
	}

	stationIDs := make([]int64, len(retained))
	for r, row := range retained {
		loc := locs[row.Station]
		id, err := st.RegisterStation(ctx, row.Station, loc[0], loc[1])
		if err != nil {
			return err
		}
		stationIDs[r] = id
	}

	rows := make([]model.ValueRow, len(retained))
	for c, im := range file.Measures {
		for r, row := range retained {
			rows[r] = model.ValueRow{
				StationID:    stationIDs[r],
				SimulationID: simID,
				Value:        row.Values[c],
			}
		}
		if err := st.InsertValues(ctx, im, rows); err != nil {
			return err
		}
	}

	metrics.FilesProcessed.Inc()
	metrics.RowsInserted.Add(float64(len(retained) * len(file.Measures)))
	res.Committed++
	res.Rows += len(retained) * len(file.Measures)
	return nil
}
