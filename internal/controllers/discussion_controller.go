package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wauu/lms_backend/internal/models"
	"github.com/wauu/lms_backend/internal/policy"
)

type DiscussionController struct {
	DB     *gorm.DB
	Policy *policy.Authorizer
}

type createDiscussionRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
}

// CreateDiscussion opens a discussion in a course the caller manages.
func (dc *DiscussionController) CreateDiscussion(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user := currentUser(c)
	if !requireCourseAccess(c, dc.Policy, user, policy.ActionManage, courseID) {
		return
	}

	var req createDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	discussion := models.Discussion{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := dc.DB.Create(&discussion).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "created", "id": discussion.ID})
}

// ListDiscussions returns discussions visible to the caller, optionally
// filtered with a search term.
func (dc *DiscussionController) ListDiscussions(c *gin.Context) {
	user := currentUser(c)
	search := strings.TrimSpace(c.Query("q"))

	q := dc.DB.Model(&models.Discussion{})
	switch {
	case user.IsAdmin():
		// all discussions
	case user.IsLecturer():
		sub := dc.DB.Model(&models.Course{}).Select("id").Where("lecturer_id = ?", user.ID)
		q = q.Where("course_id IN (?)", sub)
	default:
		sub := dc.DB.Model(&models.Enrollment{}).Select("course_id").Where("user_id = ?", user.ID)
		q = q.Where("course_id IN (?)", sub)
	}
	if search != "" {
		like := "%" + search + "%"
		if user.IsStudent() {
			q = q.Where("title ILIKE ? OR description ILIKE ?", like, like)
		} else {
			courseSub := dc.DB.Model(&models.Course{}).Select("id").
				Where("title ILIKE ? OR code ILIKE ?", like, like)
			q = q.Where("title ILIKE ? OR description ILIKE ? OR course_id IN (?)", like, like, courseSub)
		}
	}

	var discussions []models.Discussion
	if err := q.Order("created_at DESC").Find(&discussions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"discussions": discussions})
}

func postJSON(p models.Post, author *models.User) gin.H {
	out := gin.H{
		"id":         p.ID,
		"author_id":  p.AuthorID,
		"parent_id":  p.ParentID,
		"content":    p.Content,
		"created_at": p.CreatedAt,
	}
	if author != nil {
		out["author"] = author.FullName()
	}
	return out
}

// GetDiscussion returns root posts in creation order, each with its reply
// thread nested under it.
func (dc *DiscussionController) GetDiscussion(c *gin.Context) {
	discussionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var discussion models.Discussion
	if err := dc.DB.First(&discussion, discussionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "discussion not found"})
		return
	}
	user := currentUser(c)
	if !requireCourseAccess(c, dc.Policy, user, policy.ActionView, discussion.CourseID) {
		return
	}

	var posts []models.Post
	if err := dc.DB.Where("discussion_id = ?", discussionID).Order("created_at ASC").Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	authorIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
	}
	authors := map[uint]models.User{}
	if len(authorIDs) > 0 {
		var users []models.User
		if err := dc.DB.Where("id IN ?", authorIDs).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		for _, u := range users {
			authors[u.ID] = u
		}
	}

	// Arena walk: posts are already in creation order, so replies attach to
	// their parent's bucket in one pass.
	replies := map[uint][]gin.H{}
	roots := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.IsRoot() {
			roots = append(roots, p)
			continue
		}
		author := authors[p.AuthorID]
		replies[*p.ParentID] = append(replies[*p.ParentID], postJSON(p, &author))
	}
	out := make([]gin.H, 0, len(roots))
	for _, root := range roots {
		author := authors[root.AuthorID]
		entry := postJSON(root, &author)
		entry["replies"] = replies[root.ID]
		out = append(out, entry)
	}

	c.JSON(http.StatusOK, gin.H{"discussion": discussion, "posts": out})
}

type addPostRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// AddPost writes a root post or a reply. A reply's parent must already
// exist in the same discussion.
func (dc *DiscussionController) AddPost(c *gin.Context) {
	discussionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var discussion models.Discussion
	if err := dc.DB.First(&discussion, discussionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "discussion not found"})
		return
	}
	user := currentUser(c)
	if !requireCourseAccess(c, dc.Policy, user, policy.ActionPost, discussion.CourseID) {
		return
	}

	var req addPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ParentID != nil {
		var parent models.Post
		if err := dc.DB.First(&parent, *req.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "parent post not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if parent.DiscussionID != discussionID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "parent post belongs to another discussion"})
			return
		}
	}

	post := models.Post{
		DiscussionID: discussionID,
		AuthorID:     user.ID,
		ParentID:     req.ParentID,
		Content:      req.Content,
	}
	if err := dc.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "posted", "id": post.ID})
}
