package models

import "time"

type Assignment struct {
	ID          uint   `gorm:"primaryKey"`
	CourseID    uint   `gorm:"index"`
	Title       string `gorm:"size:200"`
	Description string `gorm:"type:text"`
	MaxPoints   int    `gorm:"default:100"`
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Submission records a student's one-and-only submission for an assignment.
// First submit wins; the unique pair rejects a concurrent second insert.
type Submission struct {
	ID           uint   `gorm:"primaryKey"`
	AssignmentID uint   `gorm:"uniqueIndex:uniq_assignment_student"`
	StudentID    uint   `gorm:"uniqueIndex:uniq_assignment_student"`
	Content      string `gorm:"type:text"`
	FilePath     string `gorm:"size:255"`
	URL          string `gorm:"size:255"`
	SubmittedAt  time.Time
}

// IsLate reports whether the submission arrived after the assignment's due
// date. No due date means never late.
func (s *Submission) IsLate(a *Assignment) bool {
	if a == nil || a.DueDate == nil {
		return false
	}
	return s.SubmittedAt.After(*a.DueDate)
}

// Grade is upserted per (assignment, student): re-grading overwrites points
// and feedback and refreshes GradedAt instead of adding a row.
type Grade struct {
	ID           uint    `gorm:"primaryKey"`
	AssignmentID uint    `gorm:"uniqueIndex:uniq_grade_assignment_student"`
	StudentID    uint    `gorm:"uniqueIndex:uniq_grade_assignment_student"`
	PointsEarned float64 `gorm:"default:0"`
	Feedback     string  `gorm:"type:text"`
	GradedAt     time.Time
}

// Percentage returns the earned share of maxPoints in percent. A zero
// maxPoints yields 0 rather than dividing by zero.
func (g *Grade) Percentage(maxPoints int) float64 {
	if maxPoints <= 0 {
		return 0
	}
	return g.PointsEarned / float64(maxPoints) * 100
}
