package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBBox(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		b, err := ParseBBox("10, 50,35,65")
		require.NoError(t, err)
		assert.Equal(t, BBox{West: 10, South: 50, East: 35, North: 65}, b)
		assert.Equal(t, "10,50,35,65", b.String())
	})

	t.Run("antimeridian", func(t *testing.T) {
		b, err := ParseBBox("170,-10,-170,10")
		require.NoError(t, err)
		assert.True(t, b.Contains(0, 179))
		assert.True(t, b.Contains(0, -179))
		assert.False(t, b.Contains(0, 0))
	})

	for _, in := range []string{"", "1,2,3", "a,b,c,d", "0,10,5,5", "-200,0,0,10", "0,0,NaN,1"} {
		t.Run("invalid "+in, func(t *testing.T) {
			_, err := ParseBBox(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidQuery))
		})
	}
}

func TestBBoxContains(t *testing.T) {
	b := BBox{West: 10, South: 50, East: 35, North: 65}

	assert.True(t, b.Contains(57.5, 22.5))
	assert.True(t, b.Contains(50, 10), "edges are inside")
	assert.False(t, b.Contains(49.9, 20))
	assert.False(t, b.Contains(55, 35.1))
}

func TestBBoxCenter(t *testing.T) {
	lat, lon := BBox{West: 10, South: 50, East: 35, North: 65}.Center()
	assert.Equal(t, 57.5, lat)
	assert.Equal(t, 22.5, lon)

	lat, lon = BBox{West: 170, South: -10, East: -170, North: 10}.Center()
	assert.Equal(t, 0.0, lat)
	assert.Equal(t, 180.0, lon)
}

func TestCoveringRadiusNM(t *testing.T) {
	r := BBox{West: -1, South: -1, East: 1, North: 1}.CoveringRadiusNM()
	assert.InDelta(t, 85.0, r, 0.5)

	assert.Greater(t, WorldBBox.CoveringRadiusNM(), float64(MaxRadiusNM))
}

func TestDistanceNM(t *testing.T) {
	assert.InDelta(t, 60.1, DistanceNM(0, 0, 1, 0), 0.1)
	assert.Equal(t, 0.0, DistanceNM(52.52, 13.405, 52.52, 13.405))
}
