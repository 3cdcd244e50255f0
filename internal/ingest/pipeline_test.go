package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quakecore/imdb-cli/internal/store"
)

// writeRunsTree lays out simulation CSVs the way a run tree does:
// <runs>/<fault>/IM_calc/<sim>/<sim>.csv. Keys are simulation names, which
// double as fault names for simplicity; glob order is lexical.
func writeRunsTree(t *testing.T, files map[string]string) string {
	t.Helper()
	runsDir := filepath.Join(t.TempDir(), "Runs")
	for sim, content := range files {
		dir := filepath.Join(runsDir, sim, "IM_calc", sim)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, sim+".csv"), []byte(content), 0o644))
	}
	return runsDir
}

func buildOpts(t *testing.T, runsDir, stations string) Options {
	t.Helper()
	dir := t.TempDir()
	stationFile := filepath.Join(dir, "stations.ll")
	require.NoError(t, os.WriteFile(stationFile, []byte(stations), 0o644))
	return Options{
		RunsDir:     runsDir,
		StationFile: stationFile,
		DBFile:      filepath.Join(dir, "im.db"),
		NProc:       1,
	}
}

const (
	csvAB = "station,component,PGA\nA,geom,0.25\nB,geom,0.3\n"
	csvA  = "station,component,PGA\nA,geom,0.5\nB,geom,0.6\n"
)

func TestBuild_TwoFilesOneListedStation(t *testing.T) {
	runsDir := writeRunsTree(t, map[string]string{
		"sim1": csvAB,
		"sim2": csvA,
	})
	opts := buildOpts(t, runsDir, "172.6 -43.5 A\n")

	res, err := Build(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Files)
	assert.Equal(t, 2, res.Committed)
	assert.Equal(t, 1, res.Stations)
	assert.Equal(t, 2, res.Rows) // one PGA row per simulation
	assert.Zero(t, res.SkippedNoStations)
	assert.NotEmpty(t, res.BuildID)

	st, err := store.Open(opts.DBFile)
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	nSim, err := st.CountSimulations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, nSim)

	stations, err := st.AllStations(ctx)
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, "A", stations[0].Name)

	vals, err := st.ValuesAt(ctx, "PGA", stations[0].ID)
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.Equal(t, 0.25, vals[0].Value)
	assert.Equal(t, 0.5, vals[1].Value)
}

func TestBuild_NoStationsOfInterest(t *testing.T) {
	runsDir := writeRunsTree(t, map[string]string{"sim1": csvAB})
	opts := buildOpts(t, runsDir, "0 0 ZZZ\n")

	res, err := Build(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SkippedNoStations)
	assert.Zero(t, res.Committed)
	assert.Zero(t, res.Stations)

	// The schema is still created from the first file's measure set.
	st, err := store.Open(opts.DBFile)
	require.NoError(t, err)
	defer st.Close()

	ims, err := st.Measures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"PGA"}, ims)

	nSim, err := st.CountSimulations(context.Background())
	require.NoError(t, err)
	assert.Zero(t, nSim)
}

func TestBuild_MidFileSkipsStationlessSimulation(t *testing.T) {
	runsDir := writeRunsTree(t, map[string]string{
		"sim1": csvAB,
		"sim2": "station,component,PGA\nZZZ,geom,0.9\n",
		"sim3": csvA,
	})
	opts := buildOpts(t, runsDir, "172.6 -43.5 A\n")

	res, err := Build(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Committed)
	assert.Equal(t, 1, res.SkippedNoStations)

	st, err := store.Open(opts.DBFile)
	require.NoError(t, err)
	defer st.Close()

	// sim2 produced no simulation entity at all.
	nSim, err := st.CountSimulations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, nSim)
}

func TestBuild_FirstFileParseFailureIsFatal(t *testing.T) {
	runsDir := writeRunsTree(t, map[string]string{
		"sim1": "station,PGA\nA,0.25\n", // no component column
		"sim2": csvA,
	})
	opts := buildOpts(t, runsDir, "172.6 -43.5 A\n")

	_, err := Build(context.Background(), opts)
	require.Error(t, err)
	assert.NoFileExists(t, opts.DBFile)
}

func TestBuild_LaterParseFailureSkipsFile(t *testing.T) {
	runsDir := writeRunsTree(t, map[string]string{
		"sim1": csvAB,
		"sim2": "station,component,PGA\nA,geom,not-a-number\n",
		"sim3": csvA,
	})
	opts := buildOpts(t, runsDir, "172.6 -43.5 A\n")

	res, err := Build(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Committed)
	assert.Equal(t, 1, res.SkippedParse)
}

func TestBuild_MultipleMeasuresAndWorkers(t *testing.T) {
	files := map[string]string{}
	for _, sim := range []string{"sim1", "sim2", "sim3", "sim4", "sim5"} {
		files[sim] = "station,component,PGA,pSA_0.1,PGV\nA,geom,0.1,0.2,0.3\nB,geom,0.4,0.5,0.6\n"
	}
	runsDir := writeRunsTree(t, files)
	opts := buildOpts(t, runsDir, "172.6 -43.5 A\n174.8 -41.3 B\n")
	opts.NProc = 3

	res, err := Build(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Committed)
	assert.Equal(t, 2, res.Stations)
	assert.Equal(t, 5*2*3, res.Rows)

	st, err := store.Open(opts.DBFile)
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	ims, err := st.Measures(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"PGA", "pSA_0.1", "PGV"}, ims)

	// Station identities follow first-seen commit order, not worker order.
	stations, err := st.AllStations(ctx)
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, "A", stations[0].Name)
	assert.Equal(t, "B", stations[1].Name)
}

func TestBuild_InjectedClock(t *testing.T) {
	runsDir := writeRunsTree(t, map[string]string{"sim1": csvAB})
	opts := buildOpts(t, runsDir, "172.6 -43.5 A\n")
	opts.Clock = clockwork.NewFakeClock()

	res, err := Build(context.Background(), opts)
	require.NoError(t, err)
	// All timing comes from the injected clock, which never advances here.
	assert.Equal(t, 1, res.Committed)
	assert.Zero(t, res.Elapsed)
}

func TestBuild_NoSourceFiles(t *testing.T) {
	opts := buildOpts(t, t.TempDir(), "172.6 -43.5 A\n")
	_, err := Build(context.Background(), opts)
	require.Error(t, err)
}

func TestBuild_CancelledContext(t *testing.T) {
	runsDir := writeRunsTree(t, map[string]string{"sim1": csvAB})
	opts := buildOpts(t, runsDir, "172.6 -43.5 A\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, opts)
	require.Error(t, err)
}
