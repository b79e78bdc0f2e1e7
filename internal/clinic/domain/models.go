// Package domain contains the tenant record.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Clinic is the tenant. Every other table carries its id.
type Clinic struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	Name     string       `gorm:"not null" json:"name"`
	Document string       `json:"document,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Clinic) TableName() string { return "clinics" }
