package models

import "time"

// LectureRoom tracks a scheduled video session for a course. IsActive is
// true only between StartSession and EndSession. Re-starting an ended room
// is allowed; no guard prevents it.
type LectureRoom struct {
	ID             uint   `gorm:"primaryKey"`
	RoomName       string `gorm:"size:100;uniqueIndex"`
	CourseID       uint   `gorm:"index"`
	LecturerID     uint   `gorm:"index"`
	Title          string `gorm:"size:200"`
	Description    string `gorm:"type:text"`
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
	ActualStart    *time.Time
	ActualEnd      *time.Time
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r *LectureRoom) StartSession(now time.Time) {
	r.IsActive = true
	r.ActualStart = &now
}

func (r *LectureRoom) EndSession(now time.Time) {
	r.IsActive = false
	r.ActualEnd = &now
}

// MeetingURL resolves the externally joinable conference URL for the room.
func (r *LectureRoom) MeetingURL(base string) string {
	return base + "/" + r.RoomName
}

// LectureSessionLog records one participant's presence in a room. At most
// one open log (LeftAt nil) exists per (room, participant); joining again
// before leaving reuses the open log.
type LectureSessionLog struct {
	ID              uint `gorm:"primaryKey"`
	LectureRoomID   uint `gorm:"index"`
	ParticipantID   uint `gorm:"index"`
	JoinedAt        time.Time
	LeftAt          *time.Time
	DurationMinutes *int
}

func (l *LectureSessionLog) IsOpen() bool { return l.LeftAt == nil }

// MarkLeft closes the log and computes the whole-minute duration
// (truncated, not rounded).
func (l *LectureSessionLog) MarkLeft(now time.Time) {
	l.LeftAt = &now
	mins := int(now.Sub(l.JoinedAt).Minutes())
	l.DurationMinutes = &mins
}
