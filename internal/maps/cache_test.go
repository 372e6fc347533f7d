package maps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/spotsurfer/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGeocoder struct {
	calls int
	err   error
}

func (c *countingGeocoder) Reverse(ctx context.Context, p geo.Point) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return "Vail, CO", nil
}

func (c *countingGeocoder) Normalize(ctx context.Context, place string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return place + ", USA", nil
}

func TestCachedGeocoder_MemoizesHits(t *testing.T) {
	next := &countingGeocoder{}
	g := NewCachedGeocoder(next, time.Minute)

	a, err := g.Normalize(context.Background(), "Vail")
	require.NoError(t, err)
	b, err := g.Normalize(context.Background(), " vail ")
	require.NoError(t, err)

	assert.Equal(t, "Vail, USA", a)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, next.calls)

	_, _ = g.Reverse(context.Background(), geo.Point{Lat: 1, Lng: 2})
	_, _ = g.Reverse(context.Background(), geo.Point{Lat: 1, Lng: 2})
	assert.Equal(t, 2, next.calls)
}

func TestCachedGeocoder_DoesNotCacheFailures(t *testing.T) {
	next := &countingGeocoder{err: errors.New("down")}
	g := NewCachedGeocoder(next, time.Minute)

	_, err := g.Normalize(context.Background(), "Vail")
	require.Error(t, err)
	_, err = g.Normalize(context.Background(), "Vail")
	require.Error(t, err)

	assert.Equal(t, 2, next.calls)
}
