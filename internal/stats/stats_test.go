package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func floatPtr(v float64) *float64 { return &v }

func TestLateness(t *testing.T) {
	start := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

	assert.Nil(t, Lateness(start, nil))

	late := Lateness(start, timePtr(start.Add(7*time.Minute)))
	require.NotNil(t, late)
	assert.Equal(t, 7, *late)

	// 90 seconds rounds up to 2 minutes.
	late = Lateness(start, timePtr(start.Add(90*time.Second)))
	require.NotNil(t, late)
	assert.Equal(t, 2, *late)

	early := Lateness(start, timePtr(start.Add(-3*time.Minute)))
	require.NotNil(t, early)
	assert.Equal(t, -3, *early)
}

func TestMinutesEarly(t *testing.T) {
	end := time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC)

	assert.Nil(t, MinutesEarly(end, nil))

	early := MinutesEarly(end, timePtr(end.Add(-12*time.Minute)))
	require.NotNil(t, early)
	assert.Equal(t, 12, *early)

	late := MinutesEarly(end, timePtr(end.Add(5*time.Minute)))
	require.NotNil(t, late)
	assert.Equal(t, -5, *late)
}

func TestEndedEarly(t *testing.T) {
	end := time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC)

	assert.False(t, EndedEarly(end, nil, 10))
	assert.False(t, EndedEarly(end, timePtr(end.Add(-9*time.Minute)), 10))
	assert.True(t, EndedEarly(end, timePtr(end.Add(-10*time.Minute)), 10))
	assert.True(t, EndedEarly(end, timePtr(end.Add(-25*time.Minute)), 10))
	// Staying past the scheduled end never counts as ending early.
	assert.False(t, EndedEarly(end, timePtr(end.Add(15*time.Minute)), 10))
}

func TestAverage(t *testing.T) {
	assert.Nil(t, Average(nil))
	assert.Nil(t, Average([]float64{}))

	avg := Average([]float64{2, 4, 6})
	require.NotNil(t, avg)
	assert.InDelta(t, 4.0, *avg, 1e-9)
}

func TestRate(t *testing.T) {
	assert.Nil(t, Rate(0, 0))

	r := Rate(0, 10)
	require.NotNil(t, r)
	assert.Zero(t, *r)

	r = Rate(3, 10)
	require.NotNil(t, r)
	assert.InDelta(t, 0.3, *r, 1e-9)
}

func TestPercentile(t *testing.T) {
	assert.Nil(t, Percentile(nil, 50))

	values := []float64{10, 20, 30, 40, 50}

	p := Percentile(values, 0)
	require.NotNil(t, p)
	assert.InDelta(t, 10, *p, 1e-9)

	p = Percentile(values, 100)
	require.NotNil(t, p)
	assert.InDelta(t, 50, *p, 1e-9)

	p = Percentile(values, 50)
	require.NotNil(t, p)
	assert.InDelta(t, 30, *p, 1e-9)

	p = Percentile(values, 25)
	require.NotNil(t, p)
	assert.InDelta(t, 20, *p, 1e-9)
}

func TestTrend(t *testing.T) {
	assert.Nil(t, Trend(nil, floatPtr(4), 0.05))
	assert.Nil(t, Trend(floatPtr(4), nil, 0.05))
	assert.Nil(t, Trend(floatPtr(0), floatPtr(4), 0.05))

	stable := Trend(floatPtr(4.0), floatPtr(4.1), 0.05)
	require.NotNil(t, stable)
	assert.Equal(t, models.TrendStable, *stable)

	improving := Trend(floatPtr(3.0), floatPtr(4.0), 0.05)
	require.NotNil(t, improving)
	assert.Equal(t, models.TrendImproving, *improving)

	declining := Trend(floatPtr(4.0), floatPtr(3.0), 0.05)
	require.NotNil(t, declining)
	assert.Equal(t, models.TrendDeclining, *declining)
}
