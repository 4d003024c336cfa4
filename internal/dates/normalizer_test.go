package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolvePriority(t *testing.T) {
	fixed := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	n := NewWithClock(func() time.Time { return fixed })

	published := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	updated := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   Input
		want time.Time
	}{
		{"published wins", Input{Published: &published, Updated: &updated, Text: []string{"2020-01-01"}}, published},
		{"updated when no published", Input{Updated: &updated, Text: []string{"2020-01-01"}}, updated},
		{"free text", Input{Text: []string{"", "Mar 5, 2025"}}, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"unparseable text falls back to now", Input{Text: []string{"not a date"}}, fixed},
		{"nothing at all", Input{}, fixed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Resolve(tt.in)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestResolveConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	published := time.Date(2024, 1, 1, 4, 0, 0, 0, loc)

	got := New().Resolve(Input{Published: &published})

	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 12, got.Hour())
}

func TestFallbackIsNeverBeforeStart(t *testing.T) {
	start := time.Now()
	n := New()

	got := n.Resolve(Input{Text: []string{"garbage"}})
	assert.False(t, got.Before(start.Truncate(time.Second)))

	got = n.ParseOr("")
	assert.False(t, got.IsZero())
	assert.False(t, got.Before(start.Truncate(time.Second)))
}

func TestParse(t *testing.T) {
	for _, in := range []string{"2024-11-08", "Nov 8, 2024", "November 8, 2024", "2024-11-08T10:00:00Z"} {
		got, ok := Parse(in)
		if assert.True(t, ok, in) {
			assert.Equal(t, 2024, got.Year())
			assert.Equal(t, time.November, got.Month())
			assert.Equal(t, 8, got.Day())
		}
	}

	_, ok := Parse("   ")
	assert.False(t, ok)
}
