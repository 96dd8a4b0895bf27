package models

import "time"

type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleTeacher UserRole = "TEACHER"
	RoleAdmin   UserRole = "ADMIN"
)

// ModeAccess decides which voice engine a student may use.
type ModeAccess string

const (
	ModeNative  ModeAccess = "native"
	ModeClassic ModeAccess = "classic"
)

type User struct {
	ID           string     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FirstName    string     `gorm:"column:first_name;type:text" json:"first_name"`
	LastName     string     `gorm:"column:last_name;type:text" json:"last_name"`
	Email        string     `gorm:"column:email;type:text;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;type:text" json:"-"`
	Role         UserRole   `gorm:"column:role;type:text" json:"role"`
	ModeAccess   ModeAccess `gorm:"column:mode_access;type:text" json:"mode_access"`
	IsActive     bool       `gorm:"column:is_active" json:"is_active"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (User) TableName() string { return "users" }
