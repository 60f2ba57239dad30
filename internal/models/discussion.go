package models

import "time"

type Discussion struct {
	ID          uint   `gorm:"primaryKey"`
	CourseID    uint   `gorm:"index"`
	Title       string `gorm:"size:200"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
}

// Post is a discussion entry. A nil ParentID marks a root post; replies
// reference an existing post in the same discussion. Deleting a parent
// leaves its replies orphaned; no cascade rule is defined for that case.
type Post struct {
	ID           uint   `gorm:"primaryKey"`
	DiscussionID uint   `gorm:"index"`
	AuthorID     uint   `gorm:"index"`
	ParentID     *uint  `gorm:"index"`
	Content      string `gorm:"type:text"`
	CreatedAt    time.Time
}

func (p *Post) IsRoot() bool { return p.ParentID == nil }
