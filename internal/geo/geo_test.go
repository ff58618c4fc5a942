package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGreatCircle(t *testing.T) {
	t.Run("identical points return exactly zero", func(t *testing.T) {
		a := Coordinates{Lat: 55.611087, Lng: 37.20829}
		assert.Equal(t, 0.0, GreatCircle(a, a))
	})

	t.Run("known pair is within tolerance of the reference distance", func(t *testing.T) {
		a := Coordinates{Lat: 55.611087, Lng: 37.20829}
		b := Coordinates{Lat: 55.595884, Lng: 37.209755}
		assert.InDelta(t, 1693.6, GreatCircle(a, b), 5)
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		a := Coordinates{Lat: 10, Lng: 20}
		b := Coordinates{Lat: -5, Lng: 45}
		assert.InDelta(t, GreatCircle(a, b), GreatCircle(b, a), 1e-9)
	})
}

func TestIsZero(t *testing.T) {
	t.Run("values under the epsilon are zero", func(t *testing.T) {
		assert.True(t, IsZero(0))
		assert.True(t, IsZero(1e-9))
	})

	t.Run("values over the epsilon are not zero", func(t *testing.T) {
		assert.False(t, IsZero(1e-3))
	})
}
