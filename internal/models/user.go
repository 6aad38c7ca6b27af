package models

type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleDriver   UserRole = "driver"
	UserRoleAdmin    UserRole = "admin"
)

type User struct {
	ID                string   `json:"id"`
	Name              string   `json:"name" validate:"required,min=2,max=100"`
	Email             string   `json:"email" validate:"required,email"`
	Role              UserRole `json:"role" validate:"required,oneof=customer driver admin"`
	ProfilePictureURL string   `json:"profile_picture_url,omitempty"`
	Ratings           []int    `json:"ratings,omitempty"`
	// Plaintext mock password. Stored and serialized only because the whole
	// directory is a simulation; stripped from everything handed to callers.
	Password string `json:"password,omitempty"`
}

// Clone returns a deep copy so callers can never mutate directory state
// through a returned record.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	copied := *u
	if u.Ratings != nil {
		copied.Ratings = make([]int, len(u.Ratings))
		copy(copied.Ratings, u.Ratings)
	}
	return &copied
}

// Sanitized returns a copy with the mock password removed.
func (u *User) Sanitized() *User {
	copied := u.Clone()
	copied.Password = ""
	return copied
}

// AverageRating aggregates a driver's rating scores. Returns 0 when the
// driver has not been rated yet.
func (u *User) AverageRating() float64 {
	if len(u.Ratings) == 0 {
		return 0
	}
	total := 0
	for _, r := range u.Ratings {
		total += r
	}
	return float64(total) / float64(len(u.Ratings))
}
