package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/wauu/lms_backend/internal/models"
	"github.com/wauu/lms_backend/internal/policy"
)

func TestEndClosesOpenSessionLogs(t *testing.T) {
	db := testDB(t)
	lecturer := seedUser(t, db, models.RoleLecturer)
	studentA := seedUser(t, db, models.RoleStudent)
	studentB := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, lecturer.ID)
	seedEnrollment(t, db, studentA.ID, course.ID)
	seedEnrollment(t, db, studentB.ID, course.ID)

	started := time.Now().UTC().Add(-time.Hour)
	room := models.LectureRoom{
		RoomName:    "END" + course.Code,
		CourseID:    course.ID,
		LecturerID:  lecturer.ID,
		Title:       "Week 1",
		ActualStart: &started,
		IsActive:    true,
	}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	for _, participant := range []models.User{studentA, studentB} {
		logEntry := models.LectureSessionLog{
			LectureRoomID: room.ID,
			ParticipantID: participant.ID,
			JoinedAt:      started,
		}
		if err := db.Create(&logEntry).Error; err != nil {
			t.Fatalf("seed session log: %v", err)
		}
	}

	ctrl := &LectureController{DB: db, Policy: &policy.Authorizer{DB: db}}
	c, w := testContext(lecturer, room.ID)
	ctrl.End(c)
	if w.Code != http.StatusOK {
		t.Fatalf("End status = %d, want %d (%s)", w.Code, http.StatusOK, w.Body.String())
	}

	if n := countWhere(t, db, &models.LectureSessionLog{}, "lecture_room_id = ? AND left_at IS NULL", room.ID); n != 0 {
		t.Errorf("open session logs after End = %d, want 0", n)
	}

	var got models.LectureRoom
	if err := db.First(&got, room.ID).Error; err != nil {
		t.Fatalf("reload room: %v", err)
	}
	if got.IsActive {
		t.Error("room still active after End")
	}
	var logs []models.LectureSessionLog
	if err := db.Where("lecture_room_id = ?", room.ID).Find(&logs).Error; err != nil {
		t.Fatalf("reload logs: %v", err)
	}
	for _, l := range logs {
		if l.DurationMinutes == nil || *l.DurationMinutes != 60 {
			t.Errorf("DurationMinutes = %v, want 60", l.DurationMinutes)
		}
	}
}
