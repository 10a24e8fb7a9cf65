package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func TestStandardizeSingleProvider(t *testing.T) {
	out := Standardize(Triple{
		Google: Sample{Score: fptr(4.0), Count: 100},
	})
	require.NotNil(t, out)
	// z = (4.0-3.8)/0.4 = 0.5, mapped = 3.5 + 0.5*0.5
	assert.InDelta(t, 3.75, *out, 1e-9)
}

func TestStandardizeNoDataReturnsNil(t *testing.T) {
	assert.Nil(t, Standardize(Triple{}))
	// a score with zero reviews contributes nothing
	assert.Nil(t, Standardize(Triple{Yelp: Sample{Score: fptr(4.5), Count: 0}}))
	// a count without a score contributes nothing
	assert.Nil(t, Standardize(Triple{Google: Sample{Score: nil, Count: 250}}))
}

func TestStandardizeCountWeighting(t *testing.T) {
	// Tabelog 3.45 over 900 reviews should dominate a thin Yelp 4.9.
	out := Standardize(Triple{
		Tabelog: Sample{Score: fptr(3.45), Count: 900},
		Yelp:    Sample{Score: fptr(4.9), Count: 10},
	})
	require.NotNil(t, out)

	zTabelog := (3.45 - 3.1) / 0.35
	zYelp := (4.9 - 4.0) / 0.5
	want := 3.5 + 0.5*((900.0/910.0)*zTabelog+(10.0/910.0)*zYelp)
	assert.InDelta(t, want, *out, 1e-9)
}

func TestStandardizeExcludesScorelessProviderFromWeights(t *testing.T) {
	// Google has a count but no score: it must not dilute Yelp's weight.
	withGhost := Standardize(Triple{
		Google: Sample{Score: nil, Count: 5000},
		Yelp:   Sample{Score: fptr(4.5), Count: 40},
	})
	alone := Standardize(Triple{
		Yelp: Sample{Score: fptr(4.5), Count: 40},
	})
	require.NotNil(t, withGhost)
	require.NotNil(t, alone)
	assert.InDelta(t, *alone, *withGhost, 1e-9)
}

func TestStandardizeUnclamped(t *testing.T) {
	out := Standardize(Triple{
		Tabelog: Sample{Score: fptr(4.9), Count: 300},
	})
	require.NotNil(t, out)
	assert.Greater(t, *out, 5.0)
}
