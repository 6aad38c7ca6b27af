package store

import (
	"context"
	"errors"
	"testing"

	"rideshare/internal/models"
)

func TestSignInUnknownEmail(t *testing.T) {
	t.Parallel()
	s := newTestStore(nil, nil)
	defer s.Close()

	_, err := s.SignIn(context.Background(), "nobody@x.edu", "pw")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("SignIn unknown email: got %v, want ErrNotFound", err)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	t.Parallel()
	s := newTestStore(nil, nil)
	defer s.Close()

	_, err := s.SignIn(context.Background(), "23012345@mvula.univen.ac.za", "wrong")
	if !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("SignIn wrong password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestSignInStripsPassword(t *testing.T) {
	t.Parallel()
	s := newTestStore(nil, nil)
	defer s.Close()

	user, err := s.SignIn(context.Background(), "23012345@mvula.univen.ac.za", "1234567")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if user.Password != "" {
		t.Errorf("returned user carries password %q, want empty", user.Password)
	}
	if user.Name != "Lufuno Netshifhefhe" {
		t.Errorf("user name: got %q, want seed name", user.Name)
	}
}

func TestRegisterAssignsSequentialIDAndDefaults(t *testing.T) {
	t.Parallel()
	s := newTestStore(nil, nil)
	defer s.Close()
	ctx := context.Background()

	user, err := s.Register(ctx, RegisterRequest{Name: "Alice", Email: "alice@x.edu", Role: models.UserRoleCustomer})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID != "7" {
		t.Errorf("new user id: got %q, want %q (six seed users)", user.ID, "7")
	}
	if user.ProfilePictureURL != "https://picsum.photos/seed/7/200" {
		t.Errorf("avatar: got %q, want deterministic placeholder", user.ProfilePictureURL)
	}
	if user.Password != "" {
		t.Errorf("returned user carries password %q, want empty", user.Password)
	}

	// The account signs in with the fixed default password.
	if _, err := s.SignIn(ctx, "alice@x.edu", "1234567"); err != nil {
		t.Errorf("SignIn with default password: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	s := newTestStore(nil, nil)
	defer s.Close()

	_, err := s.Register(context.Background(), RegisterRequest{Name: "Imposter", Email: "23012345@mvula.univen.ac.za", Role: models.UserRoleCustomer})
	if !errors.Is(err, models.ErrDuplicateEmail) {
		t.Errorf("Register duplicate: got %v, want ErrDuplicateEmail", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	t.Parallel()
	s := newTestStore(nil, nil)
	defer s.Close()

	_, err := s.Register(context.Background(), RegisterRequest{Name: "X", Email: "not-an-email", Role: "pilot"})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Register invalid input: got %v, want ErrValidation", err)
	}
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	s := newTestStore(nil, nil)
	defer s.Close()
	ctx := context.Background()
	email := "23012345@mvula.univen.ac.za"

	if err := s.ChangePassword(ctx, email, "wrong", "new"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("ChangePassword wrong old: got %v, want ErrInvalidCredentials", err)
	}
	if err := s.ChangePassword(ctx, "ghost@x.edu", "1234567", "new"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("ChangePassword unknown email: got %v, want ErrNotFound", err)
	}

	if err := s.ChangePassword(ctx, email, "1234567", "secret"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := s.SignIn(ctx, email, "secret"); err != nil {
		t.Errorf("SignIn with new password: %v", err)
	}
	if _, err := s.SignIn(ctx, email, "1234567"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("SignIn with old password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestUpdateUserEmailCollision(t *testing.T) {
	t.Parallel()
	s := newTestStore(nil, nil)
	defer s.Close()
	ctx := context.Background()

	taken := "23023456@mvula.univen.ac.za"
	if _, err := s.UpdateUser(ctx, "1", UserUpdate{Email: &taken}); !errors.Is(err, models.ErrDuplicateEmail) {
		t.Errorf("UpdateUser colliding email: got %v, want ErrDuplicateEmail", err)
	}

	// Re-submitting your own email is not a collision.
	own := "23012345@mvula.univen.ac.za"
	newName := "Lufuno N."
	updated, err := s.UpdateUser(ctx, "1", UserUpdate{Name: &newName, Email: &own})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Name != "Lufuno N." {
		t.Errorf("updated name: got %q, want %q", updated.Name, "Lufuno N.")
	}
}

func TestRemoveUser(t *testing.T) {
	t.Parallel()
	s := newTestStore(nil, nil)
	defer s.Close()
	ctx := context.Background()

	if err := s.RemoveUser(ctx, "ghost@x.edu"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("RemoveUser unknown: got %v, want ErrNotFound", err)
	}

	if err := s.RemoveUser(ctx, "23012345@mvula.univen.ac.za"); err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}
	if _, err := s.SignIn(ctx, "23012345@mvula.univen.ac.za", "1234567"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("SignIn after removal: got %v, want ErrNotFound", err)
	}
}

func TestRemoveUserProtectsAdmin(t *testing.T) {
	t.Parallel()
	s := newTestStore(nil, nil)
	defer s.Close()

	err := s.RemoveUser(context.Background(), "23034567@mvula.univen.ac.za")
	if !errors.Is(err, models.ErrProtectedAccount) {
		t.Errorf("RemoveUser admin: got %v, want ErrProtectedAccount", err)
	}

	users, _ := s.GetAllUsers(context.Background())
	if len(users) != 6 {
		t.Errorf("directory size after refused removal: got %d, want 6", len(users))
	}
}

func TestGetAllUsersSansPasswords(t *testing.T) {
	t.Parallel()
	s := newTestStore(nil, nil)
	defer s.Close()

	users, err := s.GetAllUsers(context.Background())
	if err != nil {
		t.Fatalf("GetAllUsers: %v", err)
	}
	if len(users) != 6 {
		t.Fatalf("directory size: got %d, want 6", len(users))
	}
	for _, user := range users {
		if user.Password != "" {
			t.Errorf("user %s leaked password", user.ID)
		}
	}
}

func TestGetAllUsersReturnsCopies(t *testing.T) {
	t.Parallel()
	s := newTestStore(nil, nil)
	defer s.Close()
	ctx := context.Background()

	users, _ := s.GetAllUsers(ctx)
	users[0].Name = "Vandal"

	again, _ := s.GetAllUsers(ctx)
	if again[0].Name == "Vandal" {
		t.Error("mutating a returned user leaked into the directory")
	}
}

func TestSendPasswordReset(t *testing.T) {
	t.Parallel()
	s := newTestStore(nil, nil)
	defer s.Close()
	ctx := context.Background()

	if err := s.SendPasswordReset(ctx, "ghost@x.edu"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("SendPasswordReset unknown: got %v, want ErrNotFound", err)
	}
	if err := s.SendPasswordReset(ctx, "23012345@mvula.univen.ac.za"); err != nil {
		t.Errorf("SendPasswordReset: %v", err)
	}
}
