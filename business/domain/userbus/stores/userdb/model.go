package userdb

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/domain/userbus"
	"github.com/printdesk/printdesk/business/types/name"
)

type userDB struct {
	ID                 uuid.UUID  `db:"user_id"`
	Name               string     `db:"name"`
	Email              string     `db:"email"`
	PasswordHash       []byte     `db:"password_hash"`
	Enabled            bool       `db:"enabled"`
	DefaultWorkgroupID *uuid.UUID `db:"default_workgroup_id"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

func toDBUser(bus userbus.User) userDB {
	return userDB{
		ID:                 bus.ID,
		Name:               bus.Name.String(),
		Email:              bus.Email.Address,
		PasswordHash:       bus.PasswordHash,
		Enabled:            bus.Enabled,
		DefaultWorkgroupID: bus.DefaultWorkgroupID,
		CreatedAt:          bus.CreatedAt.UTC(),
		UpdatedAt:          bus.UpdatedAt.UTC(),
	}
}

func toBusUser(db userDB) (userbus.User, error) {
	addr := mail.Address{
		Address: db.Email,
	}

	nme, err := name.Parse(db.Name)
	if err != nil {
		return userbus.User{}, fmt.Errorf("parse name: %w", err)
	}

	bus := userbus.User{
		ID:                 db.ID,
		Name:               nme,
		Email:              addr,
		PasswordHash:       db.PasswordHash,
		Enabled:            db.Enabled,
		DefaultWorkgroupID: db.DefaultWorkgroupID,
		CreatedAt:          db.CreatedAt.In(time.Local),
		UpdatedAt:          db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusUsers(dbUsrs []userDB) ([]userbus.User, error) {
	bus := make([]userbus.User, len(dbUsrs))

	for i, dbUsr := range dbUsrs {
		var err error
		bus[i], err = toBusUser(dbUsr)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
