package admin

import "time"

const DefaultSessionTTL = time.Hour

type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Session struct {
	Token     string    `json:"token"`
	AdminID   string    `json:"adminId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type LoginResult struct {
	Admin   *Admin   `json:"admin"`
	Session *Session `json:"session"`
}
