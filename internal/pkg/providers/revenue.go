package providers

import (
	"math"
	"sort"
	"time"
)

// Point is one day of revenue, date in YYYY-MM-DD (UTC), amount in major
// currency units rounded to 2 decimals.
type Point struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Series is the normalized result of one provider fetch. Points are unique
// and strictly ascending by date. Count is the number of qualifying raw
// records that contributed to the series.
type Series struct {
	Points       []Point `json:"dailyRevenue"`
	TotalRevenue float64 `json:"totalRevenue"`
	Count        int     `json:"count"`
}

// dayAggregator accumulates per-day revenue sums. Amounts stay unrounded
// while accumulating; rounding happens once at emission so repeated small
// amounts cannot compound rounding error.
type dayAggregator struct {
	days  map[string]float64
	count int
}

func newDayAggregator() *dayAggregator {
	return &dayAggregator{days: make(map[string]float64)}
}

func (a *dayAggregator) add(t time.Time, amount float64) {
	day := t.UTC().Format("2006-01-02")
	a.days[day] += amount
	a.count++
}

// series emits the sorted, rounded result. Lexicographic order on the date
// strings equals chronological order for this format. The total is the sum
// of the rounded day amounts, rounded again.
func (a *dayAggregator) series() *Series {
	points := make([]Point, 0, len(a.days))
	for day, sum := range a.days {
		points = append(points, Point{Date: day, Amount: round2(sum)})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	total := 0.0
	for _, p := range points {
		total += p.Amount
	}
	return &Series{Points: points, TotalRevenue: round2(total), Count: a.count}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
