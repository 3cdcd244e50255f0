package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir stands in for t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"build", "query", "nearest", "stations", "ims", "cache"} {
		assert.True(t, names[want], want)
	}
}

func TestBuildCommandFlags(t *testing.T) {
	assert.NotNil(t, buildCmd.Flags().Lookup("cache"))
	assert.NotNil(t, buildCmd.Flags().Lookup("nproc"))
	assert.NotNil(t, buildCmd.Flags().Lookup("metrics-addr"))
	assert.NotNil(t, queryCmd.Flags().Lookup("im"))
}

func TestBuildThenQueryEndToEnd(t *testing.T) {
	chdir(t, t.TempDir())

	sim := "Albury_REL01"
	runsDir := "Runs"
	dir := filepath.Join(runsDir, "Albury", "IM_calc", sim)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, sim+".csv"),
		[]byte("station,component,PGA\nAAA,geom,0.25\n"), 0o644))
	require.NoError(t, os.WriteFile("stations.ll", []byte("172.6 -43.5 AAA\n"), 0o644))

	rootCmd.SetArgs([]string{"build", runsDir, "stations.ll", "im.db", "--nproc", "2"})
	require.NoError(t, rootCmd.Execute())
	assert.FileExists(t, "im.db")

	rootCmd.SetArgs([]string{"query", "im.db", "AAA"})
	require.NoError(t, rootCmd.Execute())
	assert.FileExists(t, filepath.Join("im.db_stations", "AAA.csv"))

	rootCmd.SetArgs([]string{"nearest", "im.db", "--", "172.6", "-43.5"})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"ims", "im.db"})
	require.NoError(t, rootCmd.Execute())
}

func TestBuildTwiceInOneProcess(t *testing.T) {
	chdir(t, t.TempDir())

	sim := "Albury_REL01"
	dir := filepath.Join("Runs", "Albury", "IM_calc", sim)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, sim+".csv"),
		[]byte("station,component,PGA\nAAA,geom,0.25\n"), 0o644))
	require.NoError(t, os.WriteFile("stations.ll", []byte("172.6 -43.5 AAA\n"), 0o644))

	// Metric registration must survive a second build in the same process.
	rootCmd.SetArgs([]string{"build", "Runs", "stations.ll", "first.db"})
	require.NoError(t, rootCmd.Execute())
	rootCmd.SetArgs([]string{"build", "Runs", "stations.ll", "second.db"})
	require.NoError(t, rootCmd.Execute())
	assert.FileExists(t, "second.db")
}

func TestQueryUnknownStationFails(t *testing.T) {
	chdir(t, t.TempDir())

	sim := "Albury_REL01"
	dir := filepath.Join("Runs", "Albury", "IM_calc", sim)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, sim+".csv"),
		[]byte("station,component,PGA\nAAA,geom,0.25\n"), 0o644))
	require.NoError(t, os.WriteFile("stations.ll", []byte("172.6 -43.5 AAA\n"), 0o644))

	rootCmd.SetArgs([]string{"build", "Runs", "stations.ll", "im.db"})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"query", "im.db", "ZZZ"})
	require.Error(t, rootCmd.Execute())
}
