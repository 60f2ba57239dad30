// Package policy decides whether a caller may act on course-scoped content.
// Every course-gated handler resolves the caller's relation to the course
// once and asks for a Decision here instead of branching on role inline.
package policy

import (
	"errors"

	"gorm.io/gorm"

	"github.com/wauu/lms_backend/internal/models"
)

type Action string

const (
	ActionView   Action = "view"   // read course content
	ActionSubmit Action = "submit" // hand in assignment work
	ActionPost   Action = "post"   // write in a discussion
	ActionManage Action = "manage" // create assignments/discussions/rooms, grade
	ActionEnroll Action = "enroll" // join a course as a student
)

type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision { return Decision{Allowed: true} }

func Deny(reason string) Decision { return Decision{Reason: reason} }

// Scope carries the caller's relation to one course.
type Scope struct {
	CourseOwnerID uint
	Enrolled      bool
}

// Decide applies the role rules to a resolved scope. Pure; the DB lookups
// live in Authorizer.
func Decide(user *models.User, action Action, scope Scope) Decision {
	// Enrolling is a student-only act; the admin override does not apply.
	if action == ActionEnroll {
		if user.IsStudent() {
			return Allow()
		}
		return Deny("only students can enroll")
	}
	if user.IsAdmin() {
		return Allow()
	}

	switch user.Role {
	case models.RoleLecturer:
		switch action {
		case ActionSubmit:
			return Deny("lecturers cannot submit")
		default:
			if scope.CourseOwnerID == user.ID {
				return Allow()
			}
			return Deny("not course owner")
		}
	case models.RoleStudent:
		switch action {
		case ActionManage:
			return Deny("students cannot manage course content")
		default:
			if scope.Enrolled {
				return Allow()
			}
			return Deny("not enrolled")
		}
	}
	return Deny("unknown role")
}

var ErrCourseNotFound = errors.New("course not found")

type Authorizer struct {
	DB *gorm.DB
}

// CourseScope resolves the caller's relation to the course: who owns it and
// whether an enrollment row exists for the caller.
func (a *Authorizer) CourseScope(user *models.User, courseID uint) (Scope, error) {
	var course models.Course
	if err := a.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Scope{}, ErrCourseNotFound
		}
		return Scope{}, err
	}
	scope := Scope{CourseOwnerID: course.LecturerID}
	if user.IsStudent() {
		var count int64
		if err := a.DB.Model(&models.Enrollment{}).
			Where("user_id = ? AND course_id = ?", user.ID, courseID).
			Count(&count).Error; err != nil {
			return Scope{}, err
		}
		scope.Enrolled = count > 0
	}
	return scope, nil
}

// Authorize resolves the scope for courseID and applies Decide.
func (a *Authorizer) Authorize(user *models.User, action Action, courseID uint) (Decision, error) {
	scope, err := a.CourseScope(user, courseID)
	if err != nil {
		return Decision{}, err
	}
	return Decide(user, action, scope), nil
}
