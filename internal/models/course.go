package models

import "time"

type Course struct {
	ID          uint   `gorm:"primaryKey"`
	Code        string `gorm:"size:20;uniqueIndex"`
	Title       string `gorm:"size:200"`
	Description string `gorm:"type:text"`
	LecturerID  uint   `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Enrollment links a student to a course. The unique pair backs the
// idempotent-enroll contract: a concurrent duplicate insert loses at the
// constraint, not in application code.
type Enrollment struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"uniqueIndex:uniq_user_course"`
	CourseID   uint `gorm:"uniqueIndex:uniq_user_course"`
	EnrolledAt time.Time
}
