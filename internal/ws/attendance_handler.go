package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/wauu/lms_backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins; rely on JWT auth.
		return true
	},
}

// AttendanceHandler subscribes a lecturer (own rooms) or admin (all rooms)
// to the live attendance feed.
func AttendanceHandler(db *gorm.DB, hub *AttendanceHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		uVal, ok := c.Get("user")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		user := uVal.(models.User)
		if !user.IsAdmin() && !user.IsLecturer() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		allowAll := user.IsAdmin()
		allowedRooms := map[uint]struct{}{}
		if !allowAll {
			var rooms []models.LectureRoom
			if err := db.Where("lecturer_id = ?", user.ID).Find(&rooms).Error; err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if len(rooms) == 0 {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no lecture rooms owned"})
				return
			}
			for _, r := range rooms {
				allowedRooms[r.ID] = struct{}{}
			}
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := newAttendanceClient(hub, conn, allowedRooms, allowAll)
		hub.register <- client

		go client.writePump()
		client.readPump()
	}
}
