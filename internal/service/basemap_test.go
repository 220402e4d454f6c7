package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasemapCatalog(t *testing.T) {
	s := NewBasemapService()

	list := s.List()
	require.Len(t, list, 7)
	assert.Equal(t, "esri-topo", s.Default().ID)

	ids := map[string]bool{}
	for _, b := range list {
		assert.False(t, ids[b.ID], "duplicate id %s", b.ID)
		ids[b.ID] = true
		assert.Contains(t, b.URL, "{z}/{y}/{x}")
	}

	usa, err := s.Get("esri-usa-topo")
	require.NoError(t, err)
	assert.Equal(t, 0.7, usa.Opacity)

	nm, err := s.Get("national-map")
	require.NoError(t, err)
	assert.Equal(t, 20, nm.MaxZoom)

	_, err = s.Get("osm")
	assert.ErrorIs(t, err, ErrBasemapNotFound)
}

func TestBasemapListIsCopy(t *testing.T) {
	s := NewBasemapService()
	list := s.List()
	list[0].Name = "changed"
	assert.Equal(t, "ESRI Topo", s.List()[0].Name)
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	a := bus.Subscribe()
	b := bus.Subscribe()
	assert.Equal(t, 2, bus.Subscribers())

	bus.Publish(Event{Type: "location", Outcome: "ok"})
	assert.Equal(t, "ok", (<-a).Outcome)
	assert.Equal(t, "ok", (<-b).Outcome)

	bus.Unsubscribe(a)
	bus.Unsubscribe(a)
	assert.Equal(t, 1, bus.Subscribers())
	_, open := <-a
	assert.False(t, open)

	// A full subscriber does not block publishers.
	for i := 0; i < 32; i++ {
		bus.Publish(Event{Type: "location"})
	}
	assert.Len(t, b, cap(b))
	bus.Unsubscribe(b)
}
