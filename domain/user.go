package domain

import "time"

// User is a storefront customer. UserID is the stable external key engines
// and purchases refer to; it may be missing on legacy rows until backfilled.
type User struct {
	UserID       string    `json:"userid"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) HasUserID() bool {
	return u != nil && u.UserID != ""
}
