package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wauu/lms_backend/internal/models"
	"github.com/wauu/lms_backend/internal/policy"
)

type CourseController struct {
	DB     *gorm.DB
	Policy *policy.Authorizer
}

type createCourseRequest struct {
	Code        string `json:"code" binding:"required,max=20"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	LecturerID  uint   `json:"lecturer_id" binding:"required"`
}

type updateCourseRequest struct {
	Code        *string `json:"code"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	LecturerID  *uint   `json:"lecturer_id"`
}

func courseJSON(course models.Course) gin.H {
	return gin.H{
		"id":          course.ID,
		"code":        course.Code,
		"title":       course.Title,
		"description": course.Description,
		"lecturer_id": course.LecturerID,
		"created_at":  course.CreatedAt,
	}
}

// ListCourses is role-scoped: admins see everything, lecturers their own
// courses, students their enrolled courses plus the ones still open to them.
func (cc *CourseController) ListCourses(c *gin.Context) {
	user := currentUser(c)

	switch {
	case user.IsAdmin():
		var courses []models.Course
		if err := cc.DB.Order("created_at DESC").Find(&courses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out := make([]gin.H, 0, len(courses))
		for _, course := range courses {
			out = append(out, courseJSON(course))
		}
		c.JSON(http.StatusOK, gin.H{"courses": out})

	case user.IsLecturer():
		var courses []models.Course
		if err := cc.DB.Where("lecturer_id = ?", user.ID).Order("created_at DESC").Find(&courses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out := make([]gin.H, 0, len(courses))
		for _, course := range courses {
			out = append(out, courseJSON(course))
		}
		c.JSON(http.StatusOK, gin.H{"courses": out})

	default:
		sub := cc.DB.Model(&models.Enrollment{}).Select("course_id").Where("user_id = ?", user.ID)
		var enrolled []models.Course
		if err := cc.DB.Where("id IN (?)", sub).Order("created_at DESC").Find(&enrolled).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		var available []models.Course
		if err := cc.DB.Where("id NOT IN (?)", sub).Order("created_at DESC").Find(&available).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		enrolledOut := make([]gin.H, 0, len(enrolled))
		for _, course := range enrolled {
			enrolledOut = append(enrolledOut, courseJSON(course))
		}
		availableOut := make([]gin.H, 0, len(available))
		for _, course := range available {
			availableOut = append(availableOut, courseJSON(course))
		}
		c.JSON(http.StatusOK, gin.H{"courses": enrolledOut, "available_courses": availableOut})
	}
}

// GetCourse returns the course with its assignments and discussions, gated
// by the view policy.
func (cc *CourseController) GetCourse(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user := currentUser(c)
	if !requireCourseAccess(c, cc.Policy, user, policy.ActionView, courseID) {
		return
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}
	var assignments []models.Assignment
	if err := cc.DB.Where("course_id = ?", courseID).Order("created_at DESC").Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var discussions []models.Discussion
	if err := cc.DB.Where("course_id = ?", courseID).Order("created_at DESC").Find(&discussions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course":      courseJSON(course),
		"assignments": assignments,
		"discussions": discussions,
	})
}

// Enroll adds the calling student to a course. Enrolling twice is a no-op
// notice with the existing row, not an error; a concurrent duplicate insert
// is stopped by the unique pair and surfaced as a conflict.
func (cc *CourseController) Enroll(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user := currentUser(c)
	if !requireCourseAccess(c, cc.Policy, user, policy.ActionEnroll, courseID) {
		return
	}

	var existing models.Enrollment
	err := cc.DB.Where("user_id = ? AND course_id = ?", user.ID, courseID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"message":       "already enrolled",
			"enrollment_id": existing.ID,
			"enrolled_at":   existing.EnrolledAt,
		})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	enrollment := models.Enrollment{
		UserID:     user.ID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
	if err := cc.DB.Create(&enrollment).Error; err != nil {
		if models.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "enrollment already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":       "enrolled",
		"enrollment_id": enrollment.ID,
		"enrolled_at":   enrollment.EnrolledAt,
	})
}

// CreateCourse is admin-only; the course is handed to its owning lecturer at
// creation time.
func (cc *CourseController) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var lecturer models.User
	if err := cc.DB.First(&lecturer, req.LecturerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lecturer not found"})
		return
	}
	if !lecturer.IsLecturer() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user is not a lecturer"})
		return
	}

	course := models.Course{
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		LecturerID:  lecturer.ID,
	}
	if err := cc.DB.Create(&course).Error; err != nil {
		if models.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "course code already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "created", "id": course.ID})
}

func (cc *CourseController) UpdateCourse(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}
	var req updateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Code != nil {
		course.Code = *req.Code
	}
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.LecturerID != nil {
		var lecturer models.User
		if err := cc.DB.First(&lecturer, *req.LecturerID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "lecturer not found"})
			return
		}
		if !lecturer.IsLecturer() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user is not a lecturer"})
			return
		}
		course.LecturerID = lecturer.ID
	}
	if err := cc.DB.Save(&course).Error; err != nil {
		if models.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "course code already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func (cc *CourseController) DeleteCourse(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}
	if err := cc.DB.Transaction(func(tx *gorm.DB) error {
		// Leaf rows first: grades and submissions under the course's
		// assignments, posts under its discussions.
		assignmentIDs := tx.Model(&models.Assignment{}).Select("id").Where("course_id = ?", courseID)
		if err := tx.Where("assignment_id IN (?)", assignmentIDs).Delete(&models.Grade{}).Error; err != nil {
			return err
		}
		if err := tx.Where("assignment_id IN (?)", assignmentIDs).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		discussionIDs := tx.Model(&models.Discussion{}).Select("id").Where("course_id = ?", courseID)
		if err := tx.Where("discussion_id IN (?)", discussionIDs).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Discussion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
