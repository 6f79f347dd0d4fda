package userbus

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/types/name"
	"github.com/printdesk/printdesk/business/types/password"
)

type User struct {
	ID           uuid.UUID
	Name         name.Name
	Email        mail.Address
	PasswordHash []byte
	Enabled      bool

	// DefaultWorkgroupID mirrors the membership row flagged default. The
	// membership store maintains it, user writes never touch it.
	DefaultWorkgroupID *uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser contains information needed to create a new user.
type NewUser struct {
	Name     name.Name
	Email    mail.Address
	Password password.Password
}

// UpdateUser contains information needed to update a user.
type UpdateUser struct {
	Name     *name.Name
	Email    *mail.Address
	Password *password.Password
	Enabled  *bool
}
