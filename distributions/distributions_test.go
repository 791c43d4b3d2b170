package distributions

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/domino14/fairway"
)

func TestNewIsNoOpOnNormalizedRows(t *testing.T) {
	is := is.New(t)
	table := [][]float64{
		{0, 0.25, 0.5, 0.25},
		{0, 0, 0.5, 0.5},
		{0.125, 0.125, 0.25, 0.5},
	}
	d, err := New(table)
	is.NoErr(err)
	for h, row := range table {
		got, err := d.Distribution(h)
		is.NoErr(err)
		is.Equal(got, row)
	}
	is.Equal(d.Scores(), []int{1, 2, 3, 4})
	is.Equal(d.Handicaps(), 3)
}

func TestNewCorrectsResidual(t *testing.T) {
	table := [][]float64{
		// sums to 0.999: the last non-zero bucket (score 3) absorbs it.
		{0.1, 0.4, 0.499, 0},
		// sums to 1.002
		{0.2, 0.3, 0.3, 0.202},
	}
	d, err := New(table)
	require.NoError(t, err)

	row0, _ := d.Distribution(0)
	assert.InDelta(t, 0.5, row0[2], 1e-12)
	assert.Equal(t, 0.0, row0[3])
	assert.InDelta(t, 1.0, floats.Sum(row0), 1e-12)

	row1, _ := d.Distribution(1)
	assert.InDelta(t, 0.2, row1[3], 1e-12)
	assert.InDelta(t, 1.0, floats.Sum(row1), 1e-12)

	// the caller's table is left alone
	assert.Equal(t, 0.499, table[0][2])
}

func TestNewNeverCorrectsFirstColumn(t *testing.T) {
	_, err := New([][]float64{{0.999, 0, 0}})
	assert.ErrorIs(t, err, fairway.ErrContractViolation)
}

func TestNewRejectsBadTables(t *testing.T) {
	cases := map[string][][]float64{
		"empty":     {},
		"ragged":    {{0.5, 0.5}, {1}},
		"negative":  {{-0.5, 1.5}},
		"far off":   {{0.2, 0.2}},
		"no column": {{}},
	}
	for name, table := range cases {
		_, err := New(table)
		assert.ErrorIs(t, err, fairway.ErrContractViolation, name)
	}
}

func TestDistributionOutOfRange(t *testing.T) {
	is := is.New(t)
	d, err := New([][]float64{{0.5, 0.5}})
	is.NoErr(err)
	_, err = d.Distribution(1)
	is.True(errors.Is(err, fairway.ErrContractViolation))
	_, err = d.Distribution(-1)
	is.True(errors.Is(err, fairway.ErrContractViolation))
}

func TestReadCSV(t *testing.T) {
	is := is.New(t)
	in := `# handicap distributions
0, 0.1, 0.6, 0.3
0, 0.05, 0.5, 0.45
`
	d, err := ReadCSV(strings.NewReader(in))
	is.NoErr(err)
	is.Equal(d.Handicaps(), 2)
	row, err := d.Distribution(1)
	is.NoErr(err)
	is.Equal(row, []float64{0, 0.05, 0.5, 0.45})

	_, err = ReadCSV(strings.NewReader("0,0.5,x\n"))
	is.True(err != nil)
}

func TestCSVRoundTrip(t *testing.T) {
	is := is.New(t)
	d, err := Synthetic(36, 10, 4)
	is.NoErr(err)
	var buf bytes.Buffer
	is.NoErr(WriteCSV(&buf, d))
	back, err := ReadCSV(&buf)
	is.NoErr(err)
	is.Equal(back.Handicaps(), 37)
	is.Equal(len(back.Scores()), 10)
}

func TestSynthetic(t *testing.T) {
	d, err := Synthetic(36, 10, 4)
	require.NoError(t, err)
	prevMean := 0.0
	for h := range d.Handicaps() {
		row, err := d.Distribution(h)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, floats.Sum(row), 1e-9)
		mean := 0.0
		for j, p := range row {
			assert.GreaterOrEqual(t, p, 0.0)
			mean += float64(j+1) * p
		}
		// higher handicaps score worse on average
		assert.Greater(t, mean, prevMean)
		prevMean = mean
	}

	_, err = Synthetic(36, 4, 4)
	assert.ErrorIs(t, err, fairway.ErrContractViolation)
}
