package providers

import (
	"testing"
	"time"
)

func TestDayAggregatorGroupsByUTCDay(t *testing.T) {
	agg := newDayAggregator()
	// 2023-11-14T22:13:20Z
	agg.add(time.Unix(1700000000, 0), 10.50)
	// same moment in a non-UTC zone must land on the same bucket
	loc := time.FixedZone("UTC+9", 9*3600)
	agg.add(time.Unix(1700000000, 0).In(loc), 5.00)

	s := agg.series()
	if len(s.Points) != 1 {
		t.Fatalf("expected 1 day, got %d", len(s.Points))
	}
	if s.Points[0].Date != "2023-11-14" {
		t.Fatalf("expected UTC day 2023-11-14, got %s", s.Points[0].Date)
	}
	if s.Points[0].Amount != 15.50 {
		t.Fatalf("expected 15.50, got %v", s.Points[0].Amount)
	}
	if s.Count != 2 {
		t.Fatalf("expected count 2, got %d", s.Count)
	}
}

func TestDayAggregatorSortsAscending(t *testing.T) {
	agg := newDayAggregator()
	agg.add(time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC), 1)
	agg.add(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), 2)
	agg.add(time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC), 3)

	s := agg.series()
	want := []string{"2024-03-01", "2024-03-02", "2024-03-03"}
	if len(s.Points) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(s.Points))
	}
	for i, day := range want {
		if s.Points[i].Date != day {
			t.Fatalf("position %d: expected %s, got %s", i, day, s.Points[i].Date)
		}
	}
}

func TestDayAggregatorRoundsAtEmission(t *testing.T) {
	agg := newDayAggregator()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	// 0.1+0.2 accumulates to 0.30000000000000004 in float64; rounding must
	// happen once at the end, not per record.
	agg.add(day, 0.1)
	agg.add(day, 0.2)

	s := agg.series()
	if s.Points[0].Amount != 0.3 {
		t.Fatalf("expected 0.3, got %v", s.Points[0].Amount)
	}
	if s.TotalRevenue != 0.3 {
		t.Fatalf("expected total 0.3, got %v", s.TotalRevenue)
	}
}

func TestDayAggregatorTotalSumsRoundedDays(t *testing.T) {
	agg := newDayAggregator()
	agg.add(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 1.005)
	agg.add(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), 2.005)

	s := agg.series()
	total := 0.0
	for _, p := range s.Points {
		total += p.Amount
	}
	if s.TotalRevenue != round2(total) {
		t.Fatalf("total %v is not the rounded sum of day amounts %v", s.TotalRevenue, total)
	}
}

func TestDayAggregatorEmpty(t *testing.T) {
	s := newDayAggregator().series()
	if s.Points == nil {
		t.Fatalf("expected non-nil points slice for JSON emission")
	}
	if len(s.Points) != 0 || s.TotalRevenue != 0 || s.Count != 0 {
		t.Fatalf("expected empty series, got %+v", s)
	}
}
