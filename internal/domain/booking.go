package domain

import (
	"slices"
	"time"
)

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "BOOKED"
	BookingStatusDeparted  BookingStatus = "DEPARTED"
	BookingStatusArrived   BookingStatus = "ARRIVED"
	BookingStatusDelivered BookingStatus = "DELIVERED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// transitions lists every move the lifecycle can make. DELIVERED has no
// inbound edge.
var transitions = map[BookingStatus][]BookingStatus{
	BookingStatusBooked:   {BookingStatusDeparted, BookingStatusArrived, BookingStatusCancelled},
	BookingStatusDeparted: {BookingStatusArrived, BookingStatusCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusBooked, BookingStatusDeparted, BookingStatusArrived, BookingStatusDelivered, BookingStatusCancelled:
		return true
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusDelivered
}

func CanTransition(from, to BookingStatus) bool {
	return slices.Contains(transitions[from], to)
}

type TimelineEvent struct {
	Event     BookingStatus `json:"event" bson:"event"`
	Timestamp time.Time     `json:"timestamp" bson:"timestamp"`
	FlightRef string        `json:"flight_ref,omitempty" bson:"flight_ref,omitempty"`
}

type Booking struct {
	ID          string          `json:"id" bson:"_id"`
	RefID       string          `json:"ref_id" bson:"ref_id"`
	Origin      string          `json:"origin" bson:"origin"`
	Destination string          `json:"destination" bson:"destination"`
	Pieces      int             `json:"pieces" bson:"pieces"`
	WeightKg    int             `json:"weight_kg" bson:"weight_kg"`
	Status      BookingStatus   `json:"status" bson:"status"`
	Flights     []string        `json:"flights" bson:"flights"`
	Timeline    []TimelineEvent `json:"timeline" bson:"timeline"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) LastEvent() (TimelineEvent, bool) {
	if len(b.Timeline) == 0 {
		return TimelineEvent{}, false
	}
	return b.Timeline[len(b.Timeline)-1], true
}

// SortedTimeline returns a copy of the timeline ordered by timestamp.
// Entries with equal timestamps keep their recorded order.
func (b *Booking) SortedTimeline() []TimelineEvent {
	out := slices.Clone(b.Timeline)
	slices.SortStableFunc(out, func(a, b TimelineEvent) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}
