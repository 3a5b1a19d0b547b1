package customer

import "time"

type Customer struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Name      *string   `json:"name"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileInput carries the fields a checkout may overwrite. Nil fields are
// left untouched.
type ProfileInput struct {
	Name  *string
	Email *string
}

func (p ProfileInput) IsEmpty() bool {
	return p.Name == nil && p.Email == nil
}
