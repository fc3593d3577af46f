// Package model contains the gorm models of the SQL record store.
package model

import (
	"time"
)

// Record holds the columns shared by every record store table.
// IDs are assigned by whoever loads the data (eg- copied from the upstream CRM),
// not generated by the database.
type Record struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(18)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createdDate formats the creation time the way the API reports it.
func (r *Record) createdDate() string {
	if r.CreatedAt.IsZero() {
		return ""
	}
	return r.CreatedAt.UTC().Format(time.RFC3339)
}
