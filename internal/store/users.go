package store

import (
	"context"
	"fmt"
	"strconv"

	"rideshare/internal/models"
	"rideshare/internal/validators"
)

type RegisterRequest struct {
	Name  string          `validate:"required,min=2,max=100"`
	Email string          `validate:"required,email"`
	Role  models.UserRole `validate:"required,oneof=customer driver admin"`
}

type UserUpdate struct {
	Name              *string
	Email             *string
	ProfilePictureURL *string
}

// SignIn checks the mock credentials and returns the matching user without
// the password field.
func (s *Store) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	if err := s.pause(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findUserByEmailLocked(email)
	if user == nil {
		return nil, fmt.Errorf("%w: no account found with this email, please register", models.ErrNotFound)
	}
	if user.Password != password {
		return nil, fmt.Errorf("%w: incorrect password, please try again", models.ErrInvalidCredentials)
	}

	s.log.LogUserAction(user.ID, "sign_in", map[string]interface{}{"role": user.Role})
	return user.Sanitized(), nil
}

// Register creates a user with the next sequential id, a deterministic
// placeholder avatar and the fixed default password.
func (s *Store) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if err := validators.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := s.pause(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserByEmailLocked(req.Email) != nil {
		return nil, fmt.Errorf("%w: a user with this email already exists", models.ErrDuplicateEmail)
	}

	id := s.nextUserIDLocked()
	user := &models.User{
		ID:                id,
		Name:              req.Name,
		Email:             req.Email,
		Role:              req.Role,
		ProfilePictureURL: fmt.Sprintf("https://picsum.photos/seed/%s/200", id),
		Password:          defaultPassword,
	}
	s.users = append(s.users, user)
	s.saveUsersLocked(ctx)

	s.log.LogUserAction(user.ID, "register", map[string]interface{}{"role": user.Role})
	return user.Sanitized(), nil
}

func (s *Store) nextUserIDLocked() string {
	next := 1
	for _, user := range s.users {
		if id, err := strconv.Atoi(user.ID); err == nil && id >= next {
			next = id + 1
		}
	}
	return strconv.Itoa(next)
}

// ChangePassword overwrites the mock password after checking the old one.
func (s *Store) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if err := s.pause(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findUserByEmailLocked(email)
	if user == nil {
		return fmt.Errorf("%w: user not found", models.ErrNotFound)
	}
	if user.Password != oldPassword {
		return fmt.Errorf("%w: incorrect current password", models.ErrInvalidCredentials)
	}

	user.Password = newPassword
	s.saveUsersLocked(ctx)
	return nil
}

// SendPasswordReset pretends to mail a reset link. The mock only checks that
// the account exists and logs the event.
func (s *Store) SendPasswordReset(ctx context.Context, email string) error {
	if err := s.pause(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserByEmailLocked(email) == nil {
		return fmt.Errorf("%w: no account found with this email address", models.ErrNotFound)
	}

	s.log.WithField("email", email).Info("Mock password reset link sent")
	return nil
}

// UpdateUser merges the given fields into a user record.
func (s *Store) UpdateUser(ctx context.Context, userID string, update UserUpdate) (*models.User, error) {
	if err := s.pause(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findUserByIDLocked(userID)
	if user == nil {
		return nil, fmt.Errorf("%w: user not found", models.ErrNotFound)
	}

	if update.Email != nil {
		if other := s.findUserByEmailLocked(*update.Email); other != nil && other.ID != userID {
			return nil, fmt.Errorf("%w: email is already in use by another account", models.ErrDuplicateEmail)
		}
		user.Email = *update.Email
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.ProfilePictureURL != nil {
		user.ProfilePictureURL = *update.ProfilePictureURL
	}

	s.saveUsersLocked(ctx)
	return user.Sanitized(), nil
}

// RemoveUser deletes a user by email. The designated admin account is
// protected at this layer, regardless of who asks.
func (s *Store) RemoveUser(ctx context.Context, email string) error {
	if err := s.pause(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if email == s.cfg.AdminEmail {
		return fmt.Errorf("%w: the admin account cannot be removed", models.ErrProtectedAccount)
	}

	for i, user := range s.users {
		if user.Email == email {
			s.users = append(s.users[:i], s.users[i+1:]...)
			s.saveUsersLocked(ctx)
			s.log.LogUserAction(user.ID, "remove", nil)
			return nil
		}
	}
	return fmt.Errorf("%w: user not found", models.ErrNotFound)
}

// GetAllUsers returns the full directory without passwords.
func (s *Store) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	if err := s.pause(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user.Sanitized())
	}
	return users, nil
}
