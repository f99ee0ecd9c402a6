package models

import "time"

// Role values for User.Role. For authorization purposes the hierarchy is
// admin > teamlead > user; "manager" means admin or teamlead.
const (
	RoleAdmin    = "admin"
	RoleTeamLead = "teamlead"
	RoleUser     = "user"
)

// User & approval related model. Password holds the bcrypt hash and is never
// serialized in responses.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"not null;index" json:"name"`
	Email          string    `gorm:"unique;not null;index" json:"email"`
	Phone          string    `gorm:"unique;not null" json:"phone"`
	Password       string    `gorm:"not null" json:"-"`
	Role           string    `gorm:"not null;default:user" json:"role"`
	IsApproved     bool      `gorm:"not null;default:false" json:"isApproved"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// IsManager reports whether the user carries the elevated manager capability.
func (u *User) IsManager() bool {
	return u.Role == RoleAdmin || u.Role == RoleTeamLead
}

// ValidRole reports whether r is one of the known role values.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleTeamLead || r == RoleUser
}
