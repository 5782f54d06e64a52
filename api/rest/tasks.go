package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/enemyai/scheduler"
)

// TaskLister is satisfied by *scheduler.Scheduler.
type TaskLister interface {
	Tasks() []scheduler.TaskInfo
}

// Tasks lists scheduled background tasks.
// GET /api/tasks
func Tasks(s TaskLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tasks": s.Tasks()})
	}
}
