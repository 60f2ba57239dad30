package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wauu/lms_backend/internal/models"
	"github.com/wauu/lms_backend/internal/policy"
)

func submitContext(user models.User, assignmentID uint) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	form := url.Values{"content": {"my answer"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(assignmentID)}}
	c.Set("user", user)
	return c, w
}

func TestSubmitTwiceKeepsOneRow(t *testing.T) {
	db := testDB(t)
	lecturer := seedUser(t, db, models.RoleLecturer)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, lecturer.ID)
	seedEnrollment(t, db, student.ID, course.ID)

	assignment := models.Assignment{CourseID: course.ID, Title: "hw1", MaxPoints: 100}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	ctrl := &AssignmentController{DB: db, Policy: &policy.Authorizer{DB: db}, UploadDir: t.TempDir()}

	c, w := submitContext(student, assignment.ID)
	ctrl.Submit(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("first Submit status = %d, want %d (%s)", w.Code, http.StatusCreated, w.Body.String())
	}

	c, w = submitContext(student, assignment.ID)
	ctrl.Submit(c)
	if w.Code != http.StatusConflict {
		t.Fatalf("second Submit status = %d, want %d (%s)", w.Code, http.StatusConflict, w.Body.String())
	}

	if n := countWhere(t, db, &models.Submission{}, "assignment_id = ? AND student_id = ?", assignment.ID, student.ID); n != 1 {
		t.Errorf("submission rows = %d, want 1", n)
	}
}
