package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ivanhom/blogicum/models"
)

// PostViewRecorder counts successful reads of post detail pages, one
// aggregated row per post per day.
func PostViewRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != "GET" {
			return
		}
		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		postID := detailPostID(c.Request.URL.Path)
		if postID == 0 {
			return
		}

		// Local midnight aligns with the DATE column.
		now := time.Now().In(time.Local)
		localMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		// Atomic upsert so concurrent views never collide on the unique key.
		_ = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "post_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": time.Now()}),
		}).Create(&models.PageView{Date: localMidnight, PostID: postID, Count: 1}).Error
	}
}

// detailPostID extracts the post id from /api/v1/posts/:id, returning 0 for
// every other path (listings, stats, nested comment routes).
func detailPostID(path string) uint {
	const prefix = "/api/v1/posts/"
	if !strings.HasPrefix(path, prefix) {
		return 0
	}
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" || strings.Contains(rest, "/") {
		return 0
	}
	id, err := strconv.ParseUint(rest, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
