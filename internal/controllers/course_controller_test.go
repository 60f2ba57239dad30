package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/wauu/lms_backend/internal/models"
	"github.com/wauu/lms_backend/internal/policy"
)

func TestDeleteCourseRemovesSubtree(t *testing.T) {
	db := testDB(t)
	admin := seedUser(t, db, models.RoleAdmin)
	lecturer := seedUser(t, db, models.RoleLecturer)
	student := seedUser(t, db, models.RoleStudent)

	course := seedCourse(t, db, lecturer.ID)
	seedEnrollment(t, db, student.ID, course.ID)

	assignment := models.Assignment{CourseID: course.ID, Title: "hw1", MaxPoints: 100}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Content:      "answer",
		SubmittedAt:  time.Now().UTC(),
	}
	if err := db.Create(&submission).Error; err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	grade := models.Grade{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		PointsEarned: 80,
		GradedAt:     time.Now().UTC(),
	}
	if err := db.Create(&grade).Error; err != nil {
		t.Fatalf("seed grade: %v", err)
	}
	discussion := models.Discussion{CourseID: course.ID, Title: "week 1"}
	if err := db.Create(&discussion).Error; err != nil {
		t.Fatalf("seed discussion: %v", err)
	}
	post := models.Post{DiscussionID: discussion.ID, AuthorID: student.ID, Content: "hello"}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	ctrl := &CourseController{DB: db, Policy: &policy.Authorizer{DB: db}}
	c, w := testContext(admin, course.ID)
	ctrl.DeleteCourse(c)
	if w.Code != http.StatusOK {
		t.Fatalf("DeleteCourse status = %d, want %d (%s)", w.Code, http.StatusOK, w.Body.String())
	}

	checks := []struct {
		name  string
		model interface{}
		query string
		arg   uint
	}{
		{"course", &models.Course{}, "id = ?", course.ID},
		{"enrollments", &models.Enrollment{}, "course_id = ?", course.ID},
		{"assignments", &models.Assignment{}, "course_id = ?", course.ID},
		{"submissions", &models.Submission{}, "assignment_id = ?", assignment.ID},
		{"grades", &models.Grade{}, "assignment_id = ?", assignment.ID},
		{"discussions", &models.Discussion{}, "course_id = ?", course.ID},
		{"posts", &models.Post{}, "discussion_id = ?", discussion.ID},
	}
	for _, check := range checks {
		if n := countWhere(t, db, check.model, check.query, check.arg); n != 0 {
			t.Errorf("%s: %d rows left after course delete, want 0", check.name, n)
		}
	}
}

func TestEnrollTwiceKeepsOneRow(t *testing.T) {
	db := testDB(t)
	lecturer := seedUser(t, db, models.RoleLecturer)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, lecturer.ID)

	ctrl := &CourseController{DB: db, Policy: &policy.Authorizer{DB: db}}

	c, w := testContext(student, course.ID)
	ctrl.Enroll(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("first Enroll status = %d, want %d (%s)", w.Code, http.StatusCreated, w.Body.String())
	}

	c, w = testContext(student, course.ID)
	ctrl.Enroll(c)
	if w.Code != http.StatusOK {
		t.Fatalf("second Enroll status = %d, want %d (%s)", w.Code, http.StatusOK, w.Body.String())
	}

	if n := countWhere(t, db, &models.Enrollment{}, "user_id = ? AND course_id = ?", student.ID, course.ID); n != 1 {
		t.Errorf("enrollment rows = %d, want 1", n)
	}
}
