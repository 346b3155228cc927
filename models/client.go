package models

import (
	"time"
)

// Client represents a customer placing orders
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `gorm:"index" json:"company"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	Avatar    *string   `json:"avatar"`                        // nullable, storage key of the uploaded image
	AvatarURL *string   `gorm:"-" json:"avatar_url,omitempty"` // computed field
	Orders    []Order   `gorm:"foreignKey:ClientID" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Client model
func (Client) TableName() string {
	return "clients"
}

// DisplayCode is the short reference shown next to the client name
func (c Client) DisplayCode() string {
	return "CL-" + uintToString(c.ID)
}
