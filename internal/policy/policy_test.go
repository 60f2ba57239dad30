package policy

import (
	"testing"

	"github.com/wauu/lms_backend/internal/models"
)

func TestDecide(t *testing.T) {
	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	lecturer := &models.User{ID: 2, Role: models.RoleLecturer}
	student := &models.User{ID: 3, Role: models.RoleStudent}

	owned := Scope{CourseOwnerID: lecturer.ID}
	foreign := Scope{CourseOwnerID: 99}
	enrolled := Scope{CourseOwnerID: 99, Enrolled: true}

	tests := []struct {
		name       string
		user       *models.User
		action     Action
		scope      Scope
		wantAllow  bool
		wantReason string
	}{
		{name: "admin views anything", user: admin, action: ActionView, scope: foreign, wantAllow: true},
		{name: "admin manages anything", user: admin, action: ActionManage, scope: foreign, wantAllow: true},
		{name: "admin cannot enroll", user: admin, action: ActionEnroll, scope: foreign, wantAllow: false, wantReason: "only students can enroll"},

		{name: "lecturer manages own course", user: lecturer, action: ActionManage, scope: owned, wantAllow: true},
		{name: "lecturer views own course", user: lecturer, action: ActionView, scope: owned, wantAllow: true},
		{name: "lecturer posts in own course", user: lecturer, action: ActionPost, scope: owned, wantAllow: true},
		{name: "lecturer denied on foreign course", user: lecturer, action: ActionView, scope: foreign, wantAllow: false, wantReason: "not course owner"},
		{name: "lecturer denied managing foreign course", user: lecturer, action: ActionManage, scope: foreign, wantAllow: false, wantReason: "not course owner"},
		{name: "lecturer cannot enroll", user: lecturer, action: ActionEnroll, scope: owned, wantAllow: false, wantReason: "only students can enroll"},
		{name: "lecturer cannot submit", user: lecturer, action: ActionSubmit, scope: owned, wantAllow: false, wantReason: "lecturers cannot submit"},

		{name: "enrolled student views", user: student, action: ActionView, scope: enrolled, wantAllow: true},
		{name: "enrolled student submits", user: student, action: ActionSubmit, scope: enrolled, wantAllow: true},
		{name: "enrolled student posts", user: student, action: ActionPost, scope: enrolled, wantAllow: true},
		{name: "unenrolled student denied view", user: student, action: ActionView, scope: foreign, wantAllow: false, wantReason: "not enrolled"},
		{name: "unenrolled student denied submit", user: student, action: ActionSubmit, scope: foreign, wantAllow: false, wantReason: "not enrolled"},
		{name: "student may enroll", user: student, action: ActionEnroll, scope: foreign, wantAllow: true},
		{name: "enrolled student cannot manage", user: student, action: ActionManage, scope: enrolled, wantAllow: false, wantReason: "students cannot manage course content"},

		{name: "unknown role denied", user: &models.User{ID: 4, Role: "guest"}, action: ActionView, scope: enrolled, wantAllow: false, wantReason: "unknown role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.user, tt.action, tt.scope)
			if got.Allowed != tt.wantAllow {
				t.Errorf("Decide() allowed = %v, want %v", got.Allowed, tt.wantAllow)
			}
			if !tt.wantAllow && got.Reason != tt.wantReason {
				t.Errorf("Decide() reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}
