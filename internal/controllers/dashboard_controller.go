package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wauu/lms_backend/internal/models"
)

type DashboardController struct {
	DB *gorm.DB
}

// Dashboard returns the role-appropriate landing summary.
func (dc *DashboardController) Dashboard(c *gin.Context) {
	user := currentUser(c)
	switch {
	case user.IsAdmin():
		dc.adminDashboard(c)
	case user.IsLecturer():
		dc.lecturerDashboard(c, user)
	default:
		dc.studentDashboard(c, user)
	}
}

func (dc *DashboardController) adminDashboard(c *gin.Context) {
	var totalUsers, totalCourses, totalAssignments int64
	if err := dc.DB.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := dc.DB.Model(&models.Course{}).Count(&totalCourses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := dc.DB.Model(&models.Assignment{}).Count(&totalAssignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var recent []models.Submission
	if err := dc.DB.Order("submitted_at DESC").Limit(5).Find(&recent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"role":               models.RoleAdmin,
		"total_users":        totalUsers,
		"total_courses":      totalCourses,
		"total_assignments":  totalAssignments,
		"recent_submissions": recent,
	})
}

func (dc *DashboardController) lecturerDashboard(c *gin.Context, user models.User) {
	var courses []models.Course
	if err := dc.DB.Where("lecturer_id = ?", user.ID).Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Submissions in the lecturer's courses that have no grade yet.
	courseSub := dc.DB.Model(&models.Course{}).Select("id").Where("lecturer_id = ?", user.ID)
	assignmentSub := dc.DB.Model(&models.Assignment{}).Select("id").Where("course_id IN (?)", courseSub)
	var pending int64
	if err := dc.DB.Model(&models.Submission{}).
		Where("assignment_id IN (?)", assignmentSub).
		Where("NOT EXISTS (SELECT 1 FROM grades g WHERE g.assignment_id = submissions.assignment_id AND g.student_id = submissions.student_id)").
		Count(&pending).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role":                models.RoleLecturer,
		"my_courses":          courses,
		"pending_submissions": pending,
	})
}

func (dc *DashboardController) studentDashboard(c *gin.Context, user models.User) {
	enrolledSub := dc.DB.Model(&models.Enrollment{}).Select("course_id").Where("user_id = ?", user.ID)
	var courses []models.Course
	if err := dc.DB.Where("id IN (?)", enrolledSub).Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Assignments in enrolled courses without a submission from this student.
	var pending []models.Assignment
	if err := dc.DB.Where("course_id IN (?)", enrolledSub).
		Where("NOT EXISTS (SELECT 1 FROM submissions s WHERE s.assignment_id = assignments.id AND s.student_id = ?)", user.ID).
		Order("due_date ASC").
		Find(&pending).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var recentGrades []models.Grade
	if err := dc.DB.Where("student_id = ?", user.ID).Order("graded_at DESC").Limit(5).Find(&recentGrades).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role":                models.RoleStudent,
		"my_courses":          courses,
		"pending_assignments": pending,
		"recent_grades":       recentGrades,
	})
}
