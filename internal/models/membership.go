package models

import "time"

// Membership status values. A rejected or removed membership is deleted
// outright; there is no terminal status row.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// Membership links a user to a group. The unique index on user_id enforces
// the one-membership-per-user rule at the storage layer, covering both join
// paths even under concurrent requests.
type Membership struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User     *User     `gorm:"foreignKey:UserID" json:"-"`
	GroupID  uint      `gorm:"index;not null" json:"group_id"`
	Group    *Group    `gorm:"foreignKey:GroupID" json:"-"`
	Status   string    `gorm:"size:20;default:pending" json:"status"`
	IsAdmin  bool      `gorm:"default:false" json:"is_admin"`
	JoinedAt time.Time `json:"joined_at"`
}

func (Membership) TableName() string { return "members" }
