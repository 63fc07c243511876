package user

import "time"

// User is a store account. Email is the login; Wilaya and Address are the
// default delivery details shown on the profile.
type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Wilaya    string    `json:"wilaya"`
	Address   string    `json:"address"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName is the name shown on orders and exports.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
