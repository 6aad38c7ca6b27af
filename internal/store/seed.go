package store

import (
	"rideshare/internal/models"
)

const seedAdminEmail = "23034567@mvula.univen.ac.za"

// defaultPassword is the mock password every account starts with.
const defaultPassword = "1234567"

// seedUsers is the dataset loaded on first run, before anything has been
// persisted.
func seedUsers() []*models.User {
	return []*models.User{
		{ID: "1", Name: "Lufuno Netshifhefhe", Email: "23012345@mvula.univen.ac.za", Role: models.UserRoleCustomer, ProfilePictureURL: "https://picsum.photos/seed/1/200", Password: defaultPassword},
		{ID: "2", Name: "Tendani Mudau", Email: "23023456@mvula.univen.ac.za", Role: models.UserRoleDriver, ProfilePictureURL: "https://picsum.photos/seed/2/200", Ratings: []int{4, 5, 5}, Password: defaultPassword},
		{ID: "3", Name: "Khathutshelo Ramabulana", Email: seedAdminEmail, Role: models.UserRoleAdmin, ProfilePictureURL: "https://picsum.photos/seed/3/200", Password: defaultPassword},
		{ID: "4", Name: "Mulalo Ndou", Email: "23045678@mvula.univen.ac.za", Role: models.UserRoleDriver, ProfilePictureURL: "https://picsum.photos/seed/4/200", Ratings: []int{5, 5, 5}, Password: defaultPassword},
		{ID: "5", Name: "Naledi Tshivhase", Email: "23056789@mvula.univen.ac.za", Role: models.UserRoleCustomer, ProfilePictureURL: "https://picsum.photos/seed/5/200", Password: defaultPassword},
		{ID: "6", Name: "Azwianewi Makhado", Email: "23067890@mvula.univen.ac.za", Role: models.UserRoleCustomer, ProfilePictureURL: "https://picsum.photos/seed/6/200", Password: defaultPassword},
	}
}
