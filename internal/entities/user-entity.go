package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type User struct {
	ID    uint64 `json:"id" db:"id"`
	Fio   string `json:"fio" db:"fio"`
	Login string `json:"login" db:"login"`

	Password string `json:"-" db:"password"`

	Role   string      `json:"role" db:"role"`
	Region null.String `json:"region,omitempty" db:"region"`

	IsBlocked bool `json:"is_blocked" db:"is_blocked"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
