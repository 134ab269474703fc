package domain

import "time"

// Contact is a cosmetic (owner, target) pairing with an optional nickname.
// Contacts are never consulted for money routing and never block a
// transfer.
type Contact struct {
	ID           int64     `json:"id"`
	UserPhone    string    `json:"user_phone"`
	ContactPhone string    `json:"contact_phone"`
	Nickname     *string   `json:"nickname,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ContactView is a contact joined with the target account's profile.
type ContactView struct {
	Phone          string  `json:"phone"`
	Username       string  `json:"username"`
	PaymentAddress *string `json:"payment_address,omitempty"`
	Nickname       *string `json:"nickname,omitempty"`
}
