package domain

import (
	"strings"
	"time"
)

type DirectRoute struct {
	Flight        Flight `json:"flight"`
	TotalDuration int    `json:"total_duration"`
}

type TransitRoute struct {
	FirstLeg        Flight `json:"first_leg"`
	SecondLeg       Flight `json:"second_leg"`
	TransitCity     string `json:"transit_city"`
	LayoverDuration int    `json:"layover_duration"`
	TotalDuration   int    `json:"total_duration"`
}

type RouteResult struct {
	Direct  []DirectRoute  `json:"direct"`
	Transit []TransitRoute `json:"transit"`
}

func NewTransitRoute(first, second Flight) TransitRoute {
	return TransitRoute{
		FirstLeg:        first,
		SecondLeg:       second,
		TransitCity:     first.Destination,
		LayoverDuration: Minutes(second.DepartureTime.Sub(first.ArrivalTime)),
		TotalDuration:   Minutes(second.ArrivalTime.Sub(first.DepartureTime)),
	}
}

// Minutes converts d to whole minutes, rounding half away from zero.
func Minutes(d time.Duration) int {
	return int(d.Round(time.Minute) / time.Minute)
}

func NormalizeAirport(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DayWindow returns the first and last millisecond of t's UTC calendar day.
func DayWindow(t time.Time) (time.Time, time.Time) {
	y, m, d := t.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, EndOfDay(start)
}

func EndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}
