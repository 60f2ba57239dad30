package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wauu/lms_backend/internal/models"
	"github.com/wauu/lms_backend/internal/policy"
)

func currentUser(c *gin.Context) models.User {
	uVal, _ := c.Get("user")
	return uVal.(models.User)
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(n), true
}

// requireCourseAccess runs the access policy for the caller against a course
// and writes the error response on failure. Returns true when the handler
// may proceed.
func requireCourseAccess(c *gin.Context, auth *policy.Authorizer, user models.User, action policy.Action, courseID uint) bool {
	decision, err := auth.Authorize(&user, action, courseID)
	if err != nil {
		if errors.Is(err, policy.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return false
	}
	if !decision.Allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": decision.Reason})
		return false
	}
	return true
}

// listParams is the shared pagination/sort query envelope.
type listParams struct {
	All     bool
	Limit   int
	Page    int
	SortBy  string
	SortDir string
}

func parseListParams(c *gin.Context, defaultSort string) listParams {
	p := listParams{Limit: 20, Page: 1, SortBy: defaultSort, SortDir: "DESC"}
	p.All = strings.EqualFold(c.Query("all"), "true") || c.Query("all") == "1"
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := strings.ToLower(c.Query("sort_by")); v != "" {
		p.SortBy = v
	}
	if v := strings.ToUpper(c.Query("sort_dir")); v == "ASC" || v == "DESC" {
		p.SortDir = v
	}
	return p
}

func (p listParams) offset() int { return (p.Page - 1) * p.Limit }

func (p listParams) meta(total int64) gin.H {
	m := gin.H{"total": total, "all": p.All}
	if !p.All {
		m["limit"] = p.Limit
		m["page"] = p.Page
		m["sort_by"] = p.SortBy
		m["sort_dir"] = p.SortDir
	}
	return m
}
