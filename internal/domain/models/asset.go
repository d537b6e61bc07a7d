package models

import (
	"time"
)

// Asset is the parent record (vehicle, property, project, trip) that owns the
// folder trees in its metadata. Asset CRUD itself belongs to the asset API;
// this service only reads ownership and rewrites tree keys.
type Asset struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
