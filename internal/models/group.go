package models

import "time"

// PublicInviteCode is the placeholder presented for public groups, which
// store no invite code. Lookups by code filter on is_public = false, so the
// placeholder can never be used to join anything.
const PublicInviteCode = "-"

// Group is a named, capacity-bounded collection of members with exactly one
// admin (the creator). Groups are immutable after creation.
type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:200;not null" json:"name"`
	Description string    `gorm:"size:1000" json:"description"`
	MaxCapacity int       `gorm:"not null" json:"max_capacity"`
	IsPublic    bool      `gorm:"not null" json:"is_public"`
	AdminID     uint      `gorm:"not null" json:"admin_id"`
	Admin       *User     `gorm:"foreignKey:AdminID" json:"-"`
	InviteCode  *string   `gorm:"uniqueIndex;size:6" json:"-"` // nil for public groups
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Group) TableName() string { return "groups" }

// InviteCodeDisplay returns the stored invite code, or the public
// placeholder when the group has none.
func (g *Group) InviteCodeDisplay() string {
	if g.InviteCode == nil {
		return PublicInviteCode
	}
	return *g.InviteCode
}
