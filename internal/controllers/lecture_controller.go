package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wauu/lms_backend/internal/models"
	"github.com/wauu/lms_backend/internal/policy"
	"github.com/wauu/lms_backend/internal/utils"
	"github.com/wauu/lms_backend/internal/ws"
)

type LectureController struct {
	DB             *gorm.DB
	Policy         *policy.Authorizer
	Hub            *ws.AttendanceHub
	MeetingBaseURL string
}

type createRoomRequest struct {
	Title          string `json:"title" binding:"required,max=200"`
	Description    string `json:"description"`
	ScheduledStart string `json:"scheduled_start"` // RFC 3339, optional
	ScheduledEnd   string `json:"scheduled_end"`   // RFC 3339, optional
}

func (lc *LectureController) roomJSON(room models.LectureRoom) gin.H {
	return gin.H{
		"id":              room.ID,
		"room_name":       room.RoomName,
		"course_id":       room.CourseID,
		"lecturer_id":     room.LecturerID,
		"title":           room.Title,
		"description":     room.Description,
		"scheduled_start": room.ScheduledStart,
		"scheduled_end":   room.ScheduledEnd,
		"actual_start":    room.ActualStart,
		"actual_end":      room.ActualEnd,
		"is_active":       room.IsActive,
		"meeting_url":     room.MeetingURL(lc.MeetingBaseURL),
		"created_at":      room.CreatedAt,
	}
}

// CreateRoom schedules a lecture room in a course the caller manages. The
// room name is derived from the course code plus a random suffix; the unique
// index is what actually guarantees it.
func (lc *LectureController) CreateRoom(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user := currentUser(c)
	if !requireCourseAccess(c, lc.Policy, user, policy.ActionManage, courseID) {
		return
	}
	var course models.Course
	if err := lc.DB.First(&course, courseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var scheduledStart, scheduledEnd *time.Time
	if req.ScheduledStart != "" {
		t, err := time.Parse(time.RFC3339, req.ScheduledStart)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduled_start format"})
			return
		}
		scheduledStart = &t
	}
	if req.ScheduledEnd != "" {
		t, err := time.Parse(time.RFC3339, req.ScheduledEnd)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduled_end format"})
			return
		}
		scheduledEnd = &t
	}
	if scheduledStart != nil && scheduledEnd != nil && !scheduledEnd.After(*scheduledStart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_end must be after scheduled_start"})
		return
	}

	room := models.LectureRoom{
		RoomName:       utils.RoomName(course.Code),
		CourseID:       courseID,
		LecturerID:     course.LecturerID,
		Title:          req.Title,
		Description:    req.Description,
		ScheduledStart: scheduledStart,
		ScheduledEnd:   scheduledEnd,
	}
	if err := lc.DB.Create(&room).Error; err != nil {
		if models.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "room name collision, retry"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "created",
		"id":          room.ID,
		"room_name":   room.RoomName,
		"meeting_url": room.MeetingURL(lc.MeetingBaseURL),
	})
}

// ListRooms is role-scoped: admins see all rooms, lecturers their own,
// students the rooms of courses they are enrolled in.
func (lc *LectureController) ListRooms(c *gin.Context) {
	user := currentUser(c)

	q := lc.DB.Model(&models.LectureRoom{})
	switch {
	case user.IsAdmin():
		// all rooms
	case user.IsLecturer():
		q = q.Where("lecturer_id = ?", user.ID)
	default:
		sub := lc.DB.Model(&models.Enrollment{}).Select("course_id").Where("user_id = ?", user.ID)
		q = q.Where("course_id IN (?)", sub)
	}

	var rooms []models.LectureRoom
	if err := q.Order("created_at DESC").Find(&rooms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, lc.roomJSON(room))
	}
	c.JSON(http.StatusOK, gin.H{"lecture_rooms": out})
}

// GetRoom returns room details; course staff additionally get the session
// log.
func (lc *LectureController) GetRoom(c *gin.Context) {
	room, user, ok := lc.loadRoomWithAccess(c, policy.ActionView)
	if !ok {
		return
	}

	resp := gin.H{"lecture_room": lc.roomJSON(room)}
	if user.IsAdmin() || user.IsLecturer() {
		var logs []models.LectureSessionLog
		if err := lc.DB.Where("lecture_room_id = ?", room.ID).Order("joined_at DESC").Find(&logs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp["session_logs"] = logs
	}
	c.JSON(http.StatusOK, resp)
}

// Start activates the lecture. Starting an already-ended room re-opens it.
func (lc *LectureController) Start(c *gin.Context) {
	room, user, ok := lc.loadRoomWithAccess(c, policy.ActionManage)
	if !ok {
		return
	}

	now := time.Now().UTC()
	room.StartSession(now)
	if err := lc.DB.Save(&room).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lc.broadcast(room, user, "started", now)
	c.JSON(http.StatusOK, gin.H{
		"message":     "lecture started",
		"is_active":   room.IsActive,
		"meeting_url": room.MeetingURL(lc.MeetingBaseURL),
	})
}

// End deactivates the lecture and closes every open session log for the
// room in one transaction.
func (lc *LectureController) End(c *gin.Context) {
	room, user, ok := lc.loadRoomWithAccess(c, policy.ActionManage)
	if !ok {
		return
	}

	now := time.Now().UTC()
	var closed []models.LectureSessionLog
	if err := lc.DB.Transaction(func(tx *gorm.DB) error {
		room.EndSession(now)
		if err := tx.Save(&room).Error; err != nil {
			return err
		}
		var open []models.LectureSessionLog
		if err := tx.Where("lecture_room_id = ? AND left_at IS NULL", room.ID).Find(&open).Error; err != nil {
			return err
		}
		for i := range open {
			open[i].MarkLeft(now)
			if err := tx.Save(&open[i]).Error; err != nil {
				return err
			}
		}
		closed = open
		return nil
	}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lc.broadcast(room, user, "ended", now)
	c.JSON(http.StatusOK, gin.H{
		"message":         "lecture ended",
		"is_active":       room.IsActive,
		"closed_sessions": len(closed),
	})
}

// Join logs the caller into the room and hands back the meeting URL. A
// second join before leaving reuses the open log. The owning lecturer
// joining an inactive room auto-starts it.
func (lc *LectureController) Join(c *gin.Context) {
	room, user, ok := lc.loadRoomWithAccess(c, policy.ActionView)
	if !ok {
		return
	}

	now := time.Now().UTC()
	var logEntry models.LectureSessionLog
	err := lc.DB.Where("lecture_room_id = ? AND participant_id = ? AND left_at IS NULL", room.ID, user.ID).
		First(&logEntry).Error
	switch {
	case err == nil:
		// already joined; reuse the open log
	case errors.Is(err, gorm.ErrRecordNotFound):
		logEntry = models.LectureSessionLog{
			LectureRoomID: room.ID,
			ParticipantID: user.ID,
			JoinedAt:      now,
		}
		if err := lc.DB.Create(&logEntry).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		lc.broadcast(room, user, "joined", now)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if user.IsLecturer() && room.LecturerID == user.ID && !room.IsActive {
		room.StartSession(now)
		if err := lc.DB.Save(&room).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		lc.broadcast(room, user, "started", now)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "joined",
		"session_id":  logEntry.ID,
		"joined_at":   logEntry.JoinedAt,
		"room_name":   room.RoomName,
		"meeting_url": room.MeetingURL(lc.MeetingBaseURL),
		"is_active":   room.IsActive,
	})
}

// Leave closes the caller's open session log and reports the computed
// duration.
func (lc *LectureController) Leave(c *gin.Context) {
	room, user, ok := lc.loadRoomWithAccess(c, policy.ActionView)
	if !ok {
		return
	}

	var logEntry models.LectureSessionLog
	err := lc.DB.Where("lecture_room_id = ? AND participant_id = ? AND left_at IS NULL", room.ID, user.ID).
		First(&logEntry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no open session for this room"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	logEntry.MarkLeft(now)
	if err := lc.DB.Save(&logEntry).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lc.broadcast(room, user, "left", now)
	c.JSON(http.StatusOK, gin.H{
		"message":          "left",
		"left_at":          logEntry.LeftAt,
		"duration_minutes": logEntry.DurationMinutes,
	})
}

func (lc *LectureController) loadRoomWithAccess(c *gin.Context, action policy.Action) (models.LectureRoom, models.User, bool) {
	var room models.LectureRoom
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return room, models.User{}, false
	}
	if err := lc.DB.First(&room, roomID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lecture room not found"})
		return room, models.User{}, false
	}
	user := currentUser(c)
	if !requireCourseAccess(c, lc.Policy, user, action, room.CourseID) {
		return room, user, false
	}
	return room, user, true
}

func (lc *LectureController) broadcast(room models.LectureRoom, user models.User, event string, at time.Time) {
	if lc.Hub == nil {
		return
	}
	lc.Hub.Broadcast(ws.AttendancePayload{
		RoomID:      room.ID,
		RoomName:    room.RoomName,
		Participant: user.UserID,
		FullName:    user.FullName(),
		Event:       event,
		At:          at,
	})
}
