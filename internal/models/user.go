package models

import "time"

const (
	RoleStudent  = "student"
	RoleLecturer = "lecturer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       string `gorm:"uniqueIndex"` // public uuid, used as token subject
	Username     string `gorm:"size:64;uniqueIndex"`
	Email        string `gorm:"size:120;uniqueIndex"`
	PasswordHash string `gorm:"size:256"`
	FirstName    string `gorm:"size:64"`
	LastName     string `gorm:"size:64"`
	Role         string `gorm:"size:20;default:student"`
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool    { return u.Role == RoleAdmin }
func (u *User) IsLecturer() bool { return u.Role == RoleLecturer }
func (u *User) IsStudent() bool  { return u.Role == RoleStudent }
