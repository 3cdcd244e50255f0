package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `station,component,PGA,pSA_0.1
AAA,geom,0.25,1.5
AAA,000,0.2,1.2
BBB,geom,0.3,2.25
CCC,ver,0.1,0.9
`

func TestParseIM_SurfaceFilter(t *testing.T) {
	file, err := parseIM(strings.NewReader(sampleCSV), "sample.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"PGA", "pSA_0.1"}, file.Measures)
	require.Len(t, file.Rows, 2)
	assert.Equal(t, IMRow{Station: "AAA", Values: []float64{0.25, 1.5}}, file.Rows[0])
	assert.Equal(t, IMRow{Station: "BBB", Values: []float64{0.3, 2.25}}, file.Rows[1])
}

func TestParseIM_ComponentColumnNotFirst(t *testing.T) {
	csv := "station,PGA,component,PGV\nAAA,0.1,geom,0.5\nAAA,0.2,090,0.6\n"
	file, err := parseIM(strings.NewReader(csv), "sample.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"PGA", "PGV"}, file.Measures)
	require.Len(t, file.Rows, 1)
	assert.Equal(t, []float64{0.1, 0.5}, file.Rows[0].Values)
}

func TestParseIM_MissingComponentColumn(t *testing.T) {
	_, err := parseIM(strings.NewReader("station,PGA,PGV\nAAA,0.1,0.5\n"), "sample.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "component")
}

func TestParseIM_BadValue(t *testing.T) {
	_, err := parseIM(strings.NewReader("station,component,PGA\nAAA,geom,oops\n"), "sample.csv")
	require.Error(t, err)
}

func TestParseIM_TooFewColumns(t *testing.T) {
	_, err := parseIM(strings.NewReader("station,component\nAAA,geom\n"), "sample.csv")
	require.Error(t, err)
}

func TestParseIMFile_Missing(t *testing.T) {
	_, err := ParseIMFile("does-not-exist.csv")
	require.Error(t, err)
}
