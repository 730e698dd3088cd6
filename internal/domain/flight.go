package domain

import "time"

type Flight struct {
	ID            string    `json:"id" bson:"_id"`
	FlightNumber  string    `json:"flight_number" bson:"flight_number"`
	Airline       string    `json:"airline" bson:"airline"`
	Origin        string    `json:"origin" bson:"origin"`
	Destination   string    `json:"destination" bson:"destination"`
	DepartureTime time.Time `json:"departure_time" bson:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time" bson:"arrival_time"`
}

// Duration is the block time of the flight rounded to whole minutes.
func (f Flight) Duration() int {
	return Minutes(f.ArrivalTime.Sub(f.DepartureTime))
}
