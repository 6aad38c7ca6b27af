package store

import (
	"context"
	"fmt"
	"strconv"

	"rideshare/internal/models"
	"rideshare/internal/validators"
)

type TripRequest struct {
	CustomerID    string               `validate:"required"`
	CustomerName  string               `validate:"required"`
	Pickup        string               `validate:"required"`
	Dropoff       string               `validate:"required,nefield=Pickup"`
	Fare          float64              `validate:"gt=0"`
	IsShared      bool
	PaymentMethod models.PaymentMethod `validate:"required,oneof=card cash"`
}

type ratingInput struct {
	Rating int `validate:"rating_value"`
}

// RequestTrip creates a trip in REQUESTED state and broadcasts the updated
// ride-request list to every driver-side subscriber. The fare arrives
// pre-computed from the estimator and is stored as-is.
func (s *Store) RequestTrip(ctx context.Context, req TripRequest) (*models.Trip, error) {
	if err := validators.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := s.pause(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	trip := &models.Trip{
		ID:              strconv.Itoa(s.nextTripID),
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		PickupLocation:  req.Pickup,
		DropoffLocation: req.Dropoff,
		Status:          models.TripStatusRequested,
		Fare:            req.Fare,
		IsShared:        req.IsShared,
		PaymentMethod:   req.PaymentMethod,
		CreatedAt:       s.now(),
		Messages:        []models.Message{},
	}
	s.nextTripID++
	s.trips = append(s.trips, trip)
	s.saveTripsLocked(ctx)
	requested := s.requestedTripsLocked()
	result := trip.Clone()
	s.mu.Unlock()

	s.log.LogTripEvent(trip.ID, "requested", map[string]interface{}{
		"customer_id": req.CustomerID,
		"shared":      req.IsShared,
	})
	s.bus.PublishRideRequests(requested)
	return result, nil
}

// AcceptTrip assigns a driver and starts the location simulator. There is
// deliberately no status guard: when two drivers race, both calls succeed
// and the later one overwrites the assignment (last-write-wins). The
// simulator registry still guarantees a single timer per trip.
func (s *Store) AcceptTrip(ctx context.Context, tripID string, driver *models.User) (*models.Trip, error) {
	if err := s.pause(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	trip := s.findTripLocked(tripID)
	if trip == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: trip not found", models.ErrNotFound)
	}

	trip.Status = models.TripStatusAccepted
	trip.DriverID = driver.ID
	trip.DriverName = driver.Name
	start := models.DriverStart
	trip.DriverLocation = &start

	if trip.IsShared {
		passengers := make([]models.Passenger, 0, 3)
		if customer := s.findUserByIDLocked(trip.CustomerID); customer != nil && customer.ProfilePictureURL != "" {
			passengers = append(passengers, models.Passenger{
				ID:                customer.ID,
				Name:              customer.Name,
				ProfilePictureURL: customer.ProfilePictureURL,
			})
		}
		passengers = append(passengers, s.cfg.Matcher.SelectCoPassengers(s.users, trip.CustomerID)...)
		trip.Passengers = passengers
	}

	s.saveTripsLocked(ctx)
	requested := s.requestedTripsLocked()
	updated := trip.Clone()
	s.mu.Unlock()

	s.log.LogTripEvent(tripID, "accepted", map[string]interface{}{"driver_id": driver.ID})
	s.bus.PublishRideRequests(requested)
	s.bus.PublishTrip(tripID, updated.Clone())
	s.startSimulator(tripID)
	return updated, nil
}

// legalTransition enumerates the state machine edges UpdateTripStatus may
// take. Acceptance goes through AcceptTrip, not here.
func legalTransition(from, to models.TripStatus) bool {
	switch from {
	case models.TripStatusRequested:
		return to == models.TripStatusCancelled
	case models.TripStatusAccepted:
		return to == models.TripStatusInProgress || to == models.TripStatusCancelled
	case models.TripStatusInProgress:
		return to == models.TripStatusCompleted
	default:
		return false
	}
}

// UpdateTripStatus advances a trip through its lifecycle. Reaching COMPLETED
// or CANCELLED stops the trip's simulator before subscribers hear about the
// transition. A cancelled trip is removed from the live collection entirely
// and its subscribers receive a single nil record.
func (s *Store) UpdateTripStatus(ctx context.Context, tripID string, status models.TripStatus) (*models.Trip, error) {
	if err := s.pause(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	trip := s.findTripLocked(tripID)
	if trip == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: trip not found", models.ErrNotFound)
	}
	if !legalTransition(trip.Status, status) {
		from := trip.Status
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: illegal status transition %s -> %s", models.ErrValidation, from, status)
	}

	originalStatus := trip.Status
	trip.Status = status

	cancelled := status == models.TripStatusCancelled
	if cancelled {
		for i, t := range s.trips {
			if t.ID == tripID {
				s.trips = append(s.trips[:i], s.trips[i+1:]...)
				break
			}
		}
	}

	s.saveTripsLocked(ctx)
	var requested []*models.Trip
	if cancelled && originalStatus == models.TripStatusRequested {
		// Drivers must stop seeing a cancelled request.
		requested = s.requestedTripsLocked()
	}
	updated := trip.Clone()
	s.mu.Unlock()

	if status.Terminal() {
		s.stopSimulator(tripID)
	}

	s.log.LogTripEvent(tripID, string(status), nil)
	if cancelled {
		s.bus.PublishTrip(tripID, nil)
		if requested != nil {
			s.bus.PublishRideRequests(requested)
		}
	} else {
		s.bus.PublishTrip(tripID, updated.Clone())
	}
	return updated, nil
}

// SendMessage appends a chat message with a server-assigned timestamp.
// Message order is append-only; nothing ever reorders or deletes entries.
func (s *Store) SendMessage(ctx context.Context, tripID, senderID, text string) (*models.Trip, error) {
	if err := s.pause(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	trip := s.findTripLocked(tripID)
	if trip == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: trip not found", models.ErrNotFound)
	}

	trip.Messages = append(trip.Messages, models.Message{
		SenderID:  senderID,
		Text:      text,
		CreatedAt: s.now(),
	})
	s.saveTripsLocked(ctx)
	updated := trip.Clone()
	s.mu.Unlock()

	s.bus.PublishTrip(tripID, updated.Clone())
	return updated, nil
}

// RateDriver appends a rating to the driver's record and stamps it on the
// trip. The store does not check that the trip is completed and does not
// prevent re-rating; both are the caller's responsibility, kept permissive
// on purpose.
func (s *Store) RateDriver(ctx context.Context, tripID, driverID string, rating int) error {
	if err := validators.ValidateStruct(ratingInput{Rating: rating}); err != nil {
		return err
	}
	if err := s.pause(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if driver := s.findUserByIDLocked(driverID); driver != nil {
		driver.Ratings = append(driver.Ratings, rating)
		s.saveUsersLocked(ctx)
	}
	if trip := s.findTripLocked(tripID); trip != nil {
		trip.Rating = &rating
		s.saveTripsLocked(ctx)
	}
	return nil
}

// GetAllTrips dumps the live collection. Cancelled trips are gone by then;
// admin views and history derive everything from this.
func (s *Store) GetAllTrips(ctx context.Context) ([]*models.Trip, error) {
	if err := s.pause(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trips := make([]*models.Trip, 0, len(s.trips))
	for _, trip := range s.trips {
		trips = append(trips, trip.Clone())
	}
	return trips, nil
}

// TripHistory returns the finished trips a user took part in, newest last.
func (s *Store) TripHistory(ctx context.Context, userID string) ([]*models.Trip, error) {
	if err := s.pause(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]*models.Trip, 0)
	for _, trip := range s.trips {
		if trip.Status.Terminal() && trip.Participant(userID) {
			history = append(history, trip.Clone())
		}
	}
	return history, nil
}

// ListenForRideRequests delivers the current REQUESTED list immediately,
// then every future change, until the returned cancel func runs. The replay
// runs before the bus registration: a broadcast landing between the two is
// skipped, and because every payload is the full list the next broadcast
// catches the listener up. Registering first would be worse, since a stale
// replay could then arrive after a newer concurrent delivery and stick.
func (s *Store) ListenForRideRequests(fn func([]*models.Trip)) func() {
	s.mu.Lock()
	snapshot := s.requestedTripsLocked()
	s.mu.Unlock()

	fn(snapshot)
	return s.bus.SubscribeRideRequests(fn)
}

// ListenForTripUpdates delivers the trip's current record immediately (nil
// when it does not exist), then every future mutation. The same
// replay-then-register window as ListenForRideRequests applies: a mutation
// broadcast in between is skipped and the next one, being a full record,
// restores the listener. When the last listener for a trip cancels, the
// trip's simulator is released so no timer outlives its audience.
func (s *Store) ListenForTripUpdates(tripID string, fn func(*models.Trip)) func() {
	s.mu.Lock()
	var snapshot *models.Trip
	if trip := s.findTripLocked(tripID); trip != nil {
		snapshot = trip.Clone()
	}
	s.mu.Unlock()

	fn(snapshot)
	return s.bus.SubscribeTrip(tripID, fn)
}

// TripSubscribers reports the number of live update subscriptions for a
// trip. Test helper.
func (s *Store) TripSubscribers(tripID string) int {
	return s.bus.TripSubscribers(tripID)
}
