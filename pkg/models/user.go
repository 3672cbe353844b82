package models

import "time"

type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
)

type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username,omitempty"`
	Role      *Role     `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
