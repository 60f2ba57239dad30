package routes

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wauu/lms_backend/internal/config"
	"github.com/wauu/lms_backend/internal/controllers"
	"github.com/wauu/lms_backend/internal/middleware"
	"github.com/wauu/lms_backend/internal/models"
	"github.com/wauu/lms_backend/internal/policy"
	"github.com/wauu/lms_backend/internal/ws"
)

func Register(r *gin.Engine, db *gorm.DB, cfg *config.Config, hub *ws.AttendanceHub) {
	accessTTL := parseMinutes(cfg.AccessTokenTTLMinutes, 60*time.Minute)
	refreshTTL := parseDays(cfg.RefreshTokenTTLDays, 30*24*time.Hour)

	authorizer := &policy.Authorizer{DB: db}

	authCtrl := &controllers.AuthController{
		DB:            db,
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.RefreshJWTSecret,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
	adminCtrl := &controllers.AdminController{DB: db}
	courseCtrl := &controllers.CourseController{DB: db, Policy: authorizer}
	assignmentCtrl := &controllers.AssignmentController{DB: db, Policy: authorizer, UploadDir: cfg.UploadFolder}
	discussionCtrl := &controllers.DiscussionController{DB: db, Policy: authorizer}
	lectureCtrl := &controllers.LectureController{DB: db, Policy: authorizer, Hub: hub, MeetingBaseURL: cfg.MeetingBaseURL}
	dashboardCtrl := &controllers.DashboardController{DB: db}

	// Public
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)
		auth.POST("/refresh", authCtrl.Refresh)
	}

	// Protected
	authMW := middleware.AuthMiddleware(db, middleware.AuthConfig{JWTSecret: cfg.JWTSecret})
	api := r.Group("/api/v1", authMW)
	{
		api.GET("/auth/me", authCtrl.Me)
		api.PUT("/auth/profile", authCtrl.UpdateProfile)
		api.POST("/auth/logout", authCtrl.Logout)

		api.GET("/dashboard", dashboardCtrl.Dashboard)

		// Courses: listing and detail are role-scoped inside the handlers;
		// enrollment is policy-gated to students.
		api.GET("/courses", courseCtrl.ListCourses)
		api.GET("/courses/:id", courseCtrl.GetCourse)
		api.POST("/courses/:id/enroll", courseCtrl.Enroll)

		// Course content management (ownership enforced by the policy).
		lecturer := api.Group("", middleware.RequireRoles(models.RoleLecturer))
		{
			lecturer.POST("/courses/:id/assignments", assignmentCtrl.CreateAssignment)
			lecturer.POST("/courses/:id/discussions", discussionCtrl.CreateDiscussion)
			lecturer.POST("/courses/:id/lecture-rooms", lectureCtrl.CreateRoom)
		}

		api.GET("/assignments", assignmentCtrl.ListAssignments)
		api.GET("/assignments/:id", assignmentCtrl.GetAssignment)
		api.POST("/assignments/:id/submissions", assignmentCtrl.Submit)
		api.POST("/submissions/:id/grade", middleware.RequireRoles(models.RoleLecturer), assignmentCtrl.Grade)
		api.GET("/grades", assignmentCtrl.ListMyGrades)
		api.GET("/uploads/:filename", assignmentCtrl.DownloadUpload)

		api.GET("/discussions", discussionCtrl.ListDiscussions)
		api.GET("/discussions/:id", discussionCtrl.GetDiscussion)
		api.POST("/discussions/:id/posts", discussionCtrl.AddPost)

		api.GET("/lecture-rooms", lectureCtrl.ListRooms)
		api.GET("/lecture-rooms/:id", lectureCtrl.GetRoom)
		api.POST("/lecture-rooms/:id/start", middleware.RequireRoles(models.RoleLecturer), lectureCtrl.Start)
		api.POST("/lecture-rooms/:id/end", middleware.RequireRoles(models.RoleLecturer), lectureCtrl.End)
		api.POST("/lecture-rooms/:id/join", lectureCtrl.Join)
		api.POST("/lecture-rooms/:id/leave", lectureCtrl.Leave)

		// Live attendance feed for lecturers and admins.
		api.GET("/ws/attendance", ws.AttendanceHandler(db, hub))

		// Admin-only
		admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
		{
			admin.GET("/users", adminCtrl.ListUsers)
			admin.POST("/users", adminCtrl.CreateUser)
			admin.GET("/users/:id", adminCtrl.GetUser)
			admin.PUT("/users/:id", adminCtrl.UpdateUser)
			admin.DELETE("/users/:id", adminCtrl.DeleteUser)

			admin.POST("/courses", courseCtrl.CreateCourse)
			admin.PUT("/courses/:id", courseCtrl.UpdateCourse)
			admin.DELETE("/courses/:id", courseCtrl.DeleteCourse)

			admin.GET("/analytics", adminCtrl.Analytics)
			admin.GET("/lecture-sessions", adminCtrl.ListLectureSessions)
		}
	}
}

func parseMinutes(val string, fallback time.Duration) time.Duration {
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Minute
}

func parseDays(val string, fallback time.Duration) time.Duration {
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * 24 * time.Hour
}
