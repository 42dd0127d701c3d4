package models

import (
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	FullName       string    `gorm:"type:varchar(255);not null" json:"full_name"`
	HashedPassword string    `gorm:"type:varchar(255);not null" json:"-"`
	Role           string    `gorm:"type:varchar(50);default:employee;index" json:"role"` // "admin", "manager" or "employee"
	Department     string    `gorm:"type:varchar(255);index" json:"department"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsManager reports whether the user holds manager-level permissions.
func (u *User) IsManager() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}
