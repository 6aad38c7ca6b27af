package store

import (
	"math/rand"

	"rideshare/internal/models"
)

// Matcher selects co-passengers for a shared ride. The default is a random
// stand-in for real pooling, kept behind an interface so tests (or a real
// matcher) can replace it.
type Matcher interface {
	SelectCoPassengers(customers []*models.User, excludeID string) []models.Passenger
}

// RandomMatcher picks 1-2 other customers at random, mirroring how the
// simulation fakes pooled rides.
type RandomMatcher struct {
	Rand *rand.Rand
}

func (m *RandomMatcher) SelectCoPassengers(customers []*models.User, excludeID string) []models.Passenger {
	candidates := make([]*models.User, 0, len(customers))
	for _, user := range customers {
		if user.Role == models.UserRoleCustomer && user.ID != excludeID {
			candidates = append(candidates, user)
		}
	}

	m.Rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	count := m.Rand.Intn(2) + 1
	if count > len(candidates) {
		count = len(candidates)
	}

	passengers := make([]models.Passenger, 0, count)
	for _, user := range candidates[:count] {
		if user.ProfilePictureURL == "" {
			continue
		}
		passengers = append(passengers, models.Passenger{
			ID:                user.ID,
			Name:              user.Name,
			ProfilePictureURL: user.ProfilePictureURL,
		})
	}
	return passengers
}
