package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptive(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0.0, Mean(nil))
	assert.Equal(0.0, Median(nil))
	assert.Equal(0.0, Max(nil))

	xs := []float64{10, 20, 30}
	assert.InDelta(20.0, Mean(xs), 1e-9)
	assert.InDelta(20.0, Median(xs), 1e-9)
	assert.InDelta(30.0, Max(xs), 1e-9)

	assert.InDelta(15.0, Median([]float64{10, 20, 30, 5}), 1e-9)

	// Median must not reorder the caller's slice
	ys := []float64{3, 1, 2}
	Median(ys)
	assert.Equal([]float64{3, 1, 2}, ys)
}

func TestMannWhitneyU(t *testing.T) {
	assert := assert.New(t)

	res, err := MannWhitneyU([]float64{10, 20, 30}, []float64{5, 6, 7})
	require.NoError(t, err)
	assert.InDelta(9.0, res.U, 1e-9)
	require.NotNil(t, res.P)
	// asymptotic two-sided p with continuity correction
	assert.InDelta(0.0809, *res.P, 0.002)
}

func TestMannWhitneyUTies(t *testing.T) {
	assert := assert.New(t)

	res, err := MannWhitneyU([]float64{1, 2, 2, 3}, []float64{2, 2, 4, 5})
	require.NoError(t, err)
	require.NotNil(t, res.P)
	assert.Greater(*res.P, 0.0)
	assert.LessOrEqual(*res.P, 1.0)
}

func TestMannWhitneyUDegenerate(t *testing.T) {
	assert := assert.New(t)

	// all observations identical: variance collapses, p is withheld
	res, err := MannWhitneyU([]float64{5, 5, 5}, []float64{5, 5})
	require.NoError(t, err)
	assert.Nil(res.P)

	_, err = MannWhitneyU(nil, []float64{1})
	assert.Error(err)
	_, err = MannWhitneyU([]float64{1}, nil)
	assert.Error(err)
}

func TestMannWhitneyUDeterminism(t *testing.T) {
	assert := assert.New(t)

	x := []float64{3.5, 1.2, 9.9, 4.4}
	y := []float64{2.2, 8.8, 0.1}
	first, err := MannWhitneyU(x, y)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := MannWhitneyU(x, y)
		require.NoError(t, err)
		assert.Equal(first.U, again.U)
		assert.Equal(*first.P, *again.P)
	}
}
