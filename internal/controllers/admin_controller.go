package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wauu/lms_backend/internal/models"
	"github.com/wauu/lms_backend/internal/utils"
)

type AdminController struct {
	DB *gorm.DB
}

var userSortColumns = map[string]string{
	"created_at": "created_at",
	"username":   "username",
	"email":      "email",
	"role":       "role",
}

func (a *AdminController) ListUsers(c *gin.Context) {
	p := parseListParams(c, "created_at")
	sortCol, ok := userSortColumns[p.SortBy]
	if !ok {
		sortCol = "created_at"
	}

	role := strings.ToLower(strings.TrimSpace(c.Query("role")))
	if role != "" && !IsValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role filter"})
		return
	}
	search := strings.TrimSpace(c.Query("q"))

	buildQuery := func() *gorm.DB {
		q := a.DB.Model(&models.User{})
		if role != "" {
			q = q.Where("role = ?", role)
		}
		if search != "" {
			like := "%" + search + "%"
			q = q.Where("username ILIKE ? OR email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?",
				like, like, like, like)
		}
		return q
	}

	var total int64
	if err := buildQuery().Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	listQ := buildQuery().Order(sortCol + " " + p.SortDir)
	if !p.All {
		listQ = listQ.Offset(p.offset()).Limit(p.Limit)
	}
	var users []models.User
	if err := listQ.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":         u.ID,
			"user_id":    u.UserID,
			"username":   u.Username,
			"email":      u.Email,
			"full_name":  u.FullName(),
			"role":       u.Role,
			"active":     u.Active,
			"created_at": u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "meta": p.meta(total)})
}

type adminCreateUserRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=64"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Role      string `json:"role" binding:"required"`
	Active    *bool  `json:"active"`
}

// CreateUser is the admin-only path that may assign any role, including
// admin.
func (a *AdminController) CreateUser(c *gin.Context) {
	var req adminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !IsValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}
	pw, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	user := models.User{
		UserID:       uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pw,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		Active:       active,
	}
	if err := a.DB.Create(&user).Error; err != nil {
		if models.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "username or email already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "created", "id": user.ID, "user_id": user.UserID})
}

func (a *AdminController) GetUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var user models.User
	if err := a.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"user_id":    user.UserID,
		"username":   user.Username,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"role":       user.Role,
		"active":     user.Active,
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	})
}

type adminUpdateUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Password  *string `json:"password" binding:"omitempty,min=6"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	Active    *bool   `json:"active"`
}

func (a *AdminController) UpdateUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var user models.User
	if err := a.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var req adminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		pw, err := utils.HashPassword(*req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}
		user.PasswordHash = pw
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Role != nil {
		if !IsValidRole(*req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := a.DB.Save(&user).Error; err != nil {
		if models.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "username or email already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

// DeleteUser removes a user. Admins may not delete their own account.
func (a *AdminController) DeleteUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	caller := currentUser(c)
	if caller.ID == userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot delete self"})
		return
	}
	var user models.User
	if err := a.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err := a.DB.Delete(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// Analytics reports platform-wide counts and derived rates.
func (a *AdminController) Analytics(c *gin.Context) {
	counts := map[string]int64{}
	type countQuery struct {
		key   string
		model interface{}
		where []interface{}
	}
	queries := []countQuery{
		{key: "total_users", model: &models.User{}},
		{key: "student_count", model: &models.User{}, where: []interface{}{"role = ?", models.RoleStudent}},
		{key: "lecturer_count", model: &models.User{}, where: []interface{}{"role = ?", models.RoleLecturer}},
		{key: "admin_count", model: &models.User{}, where: []interface{}{"role = ?", models.RoleAdmin}},
		{key: "total_courses", model: &models.Course{}},
		{key: "total_enrollments", model: &models.Enrollment{}},
		{key: "total_assignments", model: &models.Assignment{}},
		{key: "total_submissions", model: &models.Submission{}},
		{key: "total_discussions", model: &models.Discussion{}},
		{key: "total_lecture_rooms", model: &models.LectureRoom{}},
	}
	for _, q := range queries {
		dbq := a.DB.Model(q.model)
		if len(q.where) > 0 {
			dbq = dbq.Where(q.where[0], q.where[1:]...)
		}
		var n int64
		if err := dbq.Count(&n).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		counts[q.key] = n
	}

	avgEnrollment := float64(0)
	if counts["total_courses"] > 0 {
		avgEnrollment = float64(counts["total_enrollments"]) / float64(counts["total_courses"])
	}
	submissionRate := float64(0)
	if possible := counts["total_assignments"] * counts["student_count"]; possible > 0 {
		submissionRate = float64(counts["total_submissions"]) / float64(possible) * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"counts":          counts,
		"avg_enrollment":  avgEnrollment,
		"submission_rate": submissionRate,
	})
}

// ListLectureSessions is the admin review of session logs, paginated and
// filterable by course, lecturer, and join date.
func (a *AdminController) ListLectureSessions(c *gin.Context) {
	p := parseListParams(c, "joined_at")

	var day time.Time
	dateFilter := strings.TrimSpace(c.Query("date"))
	if dateFilter != "" {
		var err error
		day, err = time.Parse("2006-01-02", dateFilter)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, want YYYY-MM-DD"})
			return
		}
	}

	buildQuery := func() *gorm.DB {
		q := a.DB.Table("lecture_session_logs AS l").
			Joins("JOIN lecture_rooms r ON r.id = l.lecture_room_id").
			Joins("JOIN courses co ON co.id = r.course_id").
			Joins("JOIN users u ON u.id = l.participant_id")
		if v := strings.TrimSpace(c.Query("course_id")); v != "" {
			q = q.Where("co.id = ?", v)
		}
		if v := strings.TrimSpace(c.Query("lecturer_id")); v != "" {
			q = q.Where("r.lecturer_id = ?", v)
		}
		if dateFilter != "" {
			q = q.Where("l.joined_at >= ? AND l.joined_at < ?", day, day.AddDate(0, 0, 1))
		}
		return q
	}

	var total int64
	if err := buildQuery().Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type row struct {
		ID              uint       `json:"id"`
		RoomName        string     `json:"room_name"`
		RoomTitle       string     `json:"room_title"`
		CourseCode      string     `json:"course_code"`
		Participant     string     `json:"participant"`
		JoinedAt        time.Time  `json:"joined_at"`
		LeftAt          *time.Time `json:"left_at"`
		DurationMinutes *int       `json:"duration_minutes"`
	}
	q := buildQuery().Select(`l.id, r.room_name, r.title AS room_title, co.code AS course_code,
		u.first_name || ' ' || u.last_name AS participant,
		l.joined_at, l.left_at, l.duration_minutes`).
		Order("l.joined_at " + p.SortDir)
	if !p.All {
		q = q.Offset(p.offset()).Limit(p.Limit)
	}
	var rows []row
	if err := q.Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "meta": p.meta(total)})
}
