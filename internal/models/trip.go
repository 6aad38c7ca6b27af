package models

import (
	"time"
)

type TripStatus string
type PaymentMethod string

const (
	TripStatusRequested  TripStatus = "requested"
	TripStatusAccepted   TripStatus = "accepted"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"

	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCash PaymentMethod = "cash"
)

// Terminal reports whether a status ends the trip lifecycle.
func (s TripStatus) Terminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

type Message struct {
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Passenger struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

type Trip struct {
	ID              string        `json:"id"`
	CustomerID      string        `json:"customer_id"`
	CustomerName    string        `json:"customer_name"`
	DriverID        string        `json:"driver_id,omitempty"`
	DriverName      string        `json:"driver_name,omitempty"`
	PickupLocation  string        `json:"pickup_location"`
	DropoffLocation string        `json:"dropoff_location"`
	Status          TripStatus    `json:"status"`
	Fare            float64       `json:"fare"`
	IsShared        bool          `json:"is_shared"`
	Passengers      []Passenger   `json:"passengers,omitempty"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	CreatedAt       time.Time     `json:"created_at"`
	Rating          *int          `json:"rating,omitempty"`
	Messages        []Message     `json:"messages"`
	DriverLocation  *Location     `json:"driver_location,omitempty"`
}

// Clone returns a deep copy of the trip. The store hands out clones only;
// mutating one has no effect on stored state.
func (t *Trip) Clone() *Trip {
	if t == nil {
		return nil
	}
	copied := *t
	if t.Passengers != nil {
		copied.Passengers = make([]Passenger, len(t.Passengers))
		copy(copied.Passengers, t.Passengers)
	}
	if t.Messages != nil {
		copied.Messages = make([]Message, len(t.Messages))
		copy(copied.Messages, t.Messages)
	}
	if t.DriverLocation != nil {
		loc := *t.DriverLocation
		copied.DriverLocation = &loc
	}
	if t.Rating != nil {
		r := *t.Rating
		copied.Rating = &r
	}
	return &copied
}

// Participant reports whether the given user rides on or drives this trip.
func (t *Trip) Participant(userID string) bool {
	if t.CustomerID == userID || t.DriverID == userID {
		return true
	}
	for _, p := range t.Passengers {
		if p.ID == userID {
			return true
		}
	}
	return false
}
