package ohlc

import (
	"context"
	"testing"
	"time"

	"github.com/rickgao/nse-data/internal/fault"
)

func day(d int, hour int) time.Time {
	return time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC)
}

func TestBucketDailySingleDay(t *testing.T) {
	points := []tickPoint{
		{Timestamp: day(4, 9), Price: 100},
		{Timestamp: day(4, 10), Price: 105},
		{Timestamp: day(4, 11), Price: 98},
		{Timestamp: day(4, 15), Price: 102},
	}

	candles := bucketDaily("RELIANCE", points)

	if len(candles) != 1 {
		t.Fatalf("got %d candles, want 1", len(candles))
	}
	c := candles[0]
	if c.Symbol != "RELIANCE" {
		t.Errorf("Symbol = %s, want RELIANCE", c.Symbol)
	}
	if !c.Date.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v, want midnight UTC of the tick day", c.Date)
	}
	if c.Open != 100 || c.High != 105 || c.Low != 98 || c.Close != 102 {
		t.Errorf("OHLC = (%v, %v, %v, %v), want (100, 105, 98, 102)",
			c.Open, c.High, c.Low, c.Close)
	}
}

func TestBucketDailySplitsDays(t *testing.T) {
	points := []tickPoint{
		{Timestamp: day(4, 9), Price: 100},
		{Timestamp: day(4, 16), Price: 110},
		{Timestamp: day(6, 9), Price: 90},
	}

	candles := bucketDaily("TCS", points)

	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2 (gap day produces none)", len(candles))
	}
	if candles[0].Close != 110 {
		t.Errorf("day one Close = %v, want 110", candles[0].Close)
	}
	if candles[1].Open != 90 || candles[1].Close != 90 {
		t.Errorf("day two = (%v, %v), want (90, 90)", candles[1].Open, candles[1].Close)
	}
}

func TestBucketDailyEmpty(t *testing.T) {
	if got := bucketDaily("INFY", nil); len(got) != 0 {
		t.Errorf("got %d candles for no points, want 0", len(got))
	}
}

func TestDailyRejectsInvertedRange(t *testing.T) {
	a := New(nil, nil, nil)

	_, err := a.Daily(context.Background(), "RELIANCE", day(10, 0), day(4, 0))
	if !fault.IsValidation(err) {
		t.Errorf("Daily with end before start err = %v, want validation fault", err)
	}
}

func TestResolveRangeOptionalBounds(t *testing.T) {
	farFuture := time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	march4 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		start, end time.Time
		wantFrom   time.Time
		wantBefore time.Time
	}{
		{
			name:       "both unset",
			wantFrom:   time.Time{},
			wantBefore: farFuture,
		},
		{
			name:       "open end",
			start:      day(4, 15),
			wantFrom:   march4,
			wantBefore: farFuture,
		},
		{
			name:       "open start",
			end:        day(4, 15),
			wantFrom:   time.Time{},
			wantBefore: march4.Add(24 * time.Hour),
		},
		{
			name:       "single day",
			start:      day(4, 9),
			end:        day(4, 16),
			wantFrom:   march4,
			wantBefore: march4.Add(24 * time.Hour),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			from, before, err := resolveRange(tc.start, tc.end)
			if err != nil {
				t.Fatalf("resolveRange returned error: %v", err)
			}
			if !from.Equal(tc.wantFrom) {
				t.Errorf("from = %v, want %v", from, tc.wantFrom)
			}
			if !before.Equal(tc.wantBefore) {
				t.Errorf("before = %v, want %v", before, tc.wantBefore)
			}
		})
	}
}

func TestResolveRangeInverted(t *testing.T) {
	_, _, err := resolveRange(day(10, 0), day(4, 0))
	if !fault.IsValidation(err) {
		t.Errorf("resolveRange err = %v, want validation fault", err)
	}
}

func TestBucketDailySingleTick(t *testing.T) {
	candles := bucketDaily("INFY", []tickPoint{{Timestamp: day(5, 12), Price: 1500}})

	c := candles[0]
	if c.Open != 1500 || c.High != 1500 || c.Low != 1500 || c.Close != 1500 {
		t.Errorf("OHLC = (%v, %v, %v, %v), want all 1500", c.Open, c.High, c.Low, c.Close)
	}
}
