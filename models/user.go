package models

import "time"

const RoleAdmin = "admin"

// User covers both identity classes. Anonymous identities, created
// transparently on a first unauthenticated upload, only carry an IP.
// Registered identities are provisioned out-of-band with a username,
// bcrypt password hash and optional admin role.
type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"_id"`
	Username  string    `gorm:"type:varchar(50);index" json:"username,omitempty"`
	Password  string    `gorm:"type:varchar(255)" json:"-"`
	Role      string    `gorm:"type:varchar(20)" json:"role,omitempty"`
	IP        string    `gorm:"type:varchar(45)" json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
