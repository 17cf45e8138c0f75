package model

import "time"

// MaxUsernameLength is the longest username the users table holds, in characters.
const MaxUsernameLength = 100

// Role is the coarse permission tier of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered marketplace member (buyer and/or seller).
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:100;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserPatch is a partial admin update of a user. Absent fields are left untouched.
type UserPatch struct {
	Username Optional[string] `json:"username"`
	Email    Optional[string] `json:"email"`
	Role     Optional[Role]   `json:"role"`
	Password Optional[string] `json:"password"`
	IsActive Optional[bool]   `json:"is_active"`
}
