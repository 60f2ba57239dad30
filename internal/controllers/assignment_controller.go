package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wauu/lms_backend/internal/models"
	"github.com/wauu/lms_backend/internal/policy"
	"github.com/wauu/lms_backend/internal/utils"
)

type AssignmentController struct {
	DB        *gorm.DB
	Policy    *policy.Authorizer
	UploadDir string
}

type createAssignmentRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	MaxPoints   int    `json:"max_points" binding:"required,gt=0"`
	DueDate     string `json:"due_date"` // RFC 3339, optional
}

// CreateAssignment adds an assignment to a course the caller manages.
func (ac *AssignmentController) CreateAssignment(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user := currentUser(c)
	if !requireCourseAccess(c, ac.Policy, user, policy.ActionManage, courseID) {
		return
	}

	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var dueDate *time.Time
	if req.DueDate != "" {
		t, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date format"})
			return
		}
		dueDate = &t
	}

	assignment := models.Assignment{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		MaxPoints:   req.MaxPoints,
		DueDate:     dueDate,
	}
	if err := ac.DB.Create(&assignment).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "created", "id": assignment.ID})
}

// ListAssignments returns assignments visible to the caller, optionally
// filtered by a search term on title/description (and course code/title for
// staff).
func (ac *AssignmentController) ListAssignments(c *gin.Context) {
	user := currentUser(c)
	search := strings.TrimSpace(c.Query("q"))

	q := ac.DB.Model(&models.Assignment{})
	switch {
	case user.IsAdmin():
		// all assignments
	case user.IsLecturer():
		sub := ac.DB.Model(&models.Course{}).Select("id").Where("lecturer_id = ?", user.ID)
		q = q.Where("course_id IN (?)", sub)
	default:
		sub := ac.DB.Model(&models.Enrollment{}).Select("course_id").Where("user_id = ?", user.ID)
		q = q.Where("course_id IN (?)", sub)
	}
	if search != "" {
		like := "%" + search + "%"
		if user.IsStudent() {
			q = q.Where("title ILIKE ? OR description ILIKE ?", like, like)
		} else {
			courseSub := ac.DB.Model(&models.Course{}).Select("id").
				Where("title ILIKE ? OR code ILIKE ?", like, like)
			q = q.Where("title ILIKE ? OR description ILIKE ? OR course_id IN (?)", like, like, courseSub)
		}
	}
	order := "created_at DESC"
	if user.IsStudent() {
		order = "due_date ASC"
	}

	var assignments []models.Assignment
	if err := q.Order(order).Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// GetAssignment shows the assignment plus the caller's own submission and
// grade (students) or every submission (course staff).
func (ac *AssignmentController) GetAssignment(c *gin.Context) {
	assignmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var assignment models.Assignment
	if err := ac.DB.First(&assignment, assignmentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found"})
		return
	}
	user := currentUser(c)
	if !requireCourseAccess(c, ac.Policy, user, policy.ActionView, assignment.CourseID) {
		return
	}

	if user.IsStudent() {
		resp := gin.H{"assignment": assignment}
		var submission models.Submission
		err := ac.DB.Where("assignment_id = ? AND student_id = ?", assignmentID, user.ID).First(&submission).Error
		if err == nil {
			resp["submission"] = submission
			resp["is_late"] = submission.IsLate(&assignment)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		var grade models.Grade
		err = ac.DB.Where("assignment_id = ? AND student_id = ?", assignmentID, user.ID).First(&grade).Error
		if err == nil {
			resp["grade"] = grade
			resp["percentage"] = grade.Percentage(assignment.MaxPoints)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	var submissions []models.Submission
	if err := ac.DB.Where("assignment_id = ?", assignmentID).Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(submissions))
	for _, s := range submissions {
		out = append(out, gin.H{
			"id":           s.ID,
			"student_id":   s.StudentID,
			"content":      s.Content,
			"file_path":    s.FilePath,
			"url":          s.URL,
			"submitted_at": s.SubmittedAt,
			"is_late":      s.IsLate(&assignment),
		})
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment, "submissions": out})
}

// Submit records a student's submission. First submit wins: resubmitting is
// rejected rather than overwriting, and a concurrent duplicate insert loses
// at the unique constraint. Accepts multipart form with content, url, and an
// optional file restricted to the upload allow-list.
func (ac *AssignmentController) Submit(c *gin.Context) {
	assignmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var assignment models.Assignment
	if err := ac.DB.First(&assignment, assignmentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found"})
		return
	}
	user := currentUser(c)
	if !requireCourseAccess(c, ac.Policy, user, policy.ActionSubmit, assignment.CourseID) {
		return
	}

	var existing models.Submission
	err := ac.DB.Where("assignment_id = ? AND student_id = ?", assignmentID, user.ID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "already submitted"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	content := c.PostForm("content")
	url := c.PostForm("url")
	filePath := ""

	if file, err := c.FormFile("file"); err == nil && file != nil && file.Filename != "" {
		if !utils.AllowedUpload(file.Filename) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file type not allowed"})
			return
		}
		stored := utils.StoredFilename(file.Filename, now)
		if err := os.MkdirAll(ac.UploadDir, 0o755); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to prepare upload dir"})
			return
		}
		dst := filepath.Join(ac.UploadDir, stored)
		if err := c.SaveUploadedFile(file, dst); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
			return
		}
		filePath = stored
	}

	submission := models.Submission{
		AssignmentID: assignmentID,
		StudentID:    user.ID,
		Content:      content,
		FilePath:     filePath,
		URL:          url,
		SubmittedAt:  now,
	}
	if err := ac.DB.Create(&submission).Error; err != nil {
		if models.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "already submitted"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":      "submitted",
		"id":           submission.ID,
		"submitted_at": submission.SubmittedAt,
		"is_late":      submission.IsLate(&assignment),
	})
}

type gradeRequest struct {
	PointsEarned *float64 `json:"points_earned" binding:"required,gte=0"`
	Feedback     string   `json:"feedback"`
}

// Grade upserts the grade for a submission's (assignment, student) pair:
// re-grading overwrites points and feedback and refreshes the timestamp.
func (ac *AssignmentController) Grade(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var submission models.Submission
	if err := ac.DB.First(&submission, submissionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}
	var assignment models.Assignment
	if err := ac.DB.First(&assignment, submission.AssignmentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found"})
		return
	}
	user := currentUser(c)
	if !requireCourseAccess(c, ac.Policy, user, policy.ActionManage, assignment.CourseID) {
		return
	}

	var req gradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	var grade models.Grade
	err := ac.DB.Where("assignment_id = ? AND student_id = ?", assignment.ID, submission.StudentID).First(&grade).Error
	switch {
	case err == nil:
		grade.PointsEarned = *req.PointsEarned
		grade.Feedback = req.Feedback
		grade.GradedAt = now
		if err := ac.DB.Save(&grade).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		grade = models.Grade{
			AssignmentID: assignment.ID,
			StudentID:    submission.StudentID,
			PointsEarned: *req.PointsEarned,
			Feedback:     req.Feedback,
			GradedAt:     now,
		}
		if err := ac.DB.Create(&grade).Error; err != nil {
			if models.IsUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "grade already recorded, retry"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "graded",
		"id":         grade.ID,
		"percentage": grade.Percentage(assignment.MaxPoints),
		"graded_at":  grade.GradedAt,
	})
}

// ListMyGrades returns the calling student's grades, newest first, with
// derived percentages.
func (ac *AssignmentController) ListMyGrades(c *gin.Context) {
	user := currentUser(c)
	if !user.IsStudent() {
		c.JSON(http.StatusForbidden, gin.H{"error": "only students can view grades"})
		return
	}

	var grades []models.Grade
	if err := ac.DB.Where("student_id = ?", user.ID).Order("graded_at DESC").Find(&grades).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(grades))
	for _, g := range grades {
		var assignment models.Assignment
		if err := ac.DB.First(&assignment, g.AssignmentID).Error; err != nil {
			continue
		}
		out = append(out, gin.H{
			"id":            g.ID,
			"assignment_id": g.AssignmentID,
			"assignment":    assignment.Title,
			"points_earned": g.PointsEarned,
			"max_points":    assignment.MaxPoints,
			"percentage":    g.Percentage(assignment.MaxPoints),
			"feedback":      g.Feedback,
			"graded_at":     g.GradedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"grades": out})
}

// DownloadUpload serves a stored submission attachment to authenticated
// users.
func (ac *AssignmentController) DownloadUpload(c *gin.Context) {
	name := filepath.Base(strings.TrimSpace(c.Param("filename")))
	if name == "" || name == "." || name == ".." {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filename"})
		return
	}
	path := filepath.Join(ac.UploadDir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.File(path)
}
