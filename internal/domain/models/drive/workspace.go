package drive

import (
	"time"
)

// Workspace is the root scope owning all folders and files for one user.
// Created at account provisioning; never deleted while the user exists.
type Workspace struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
