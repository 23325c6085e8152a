package dashboard

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/accreditrack/internal/domain"
	"github.com/zulandar/accreditrack/internal/group"
	"github.com/zulandar/accreditrack/internal/link"
	"github.com/zulandar/accreditrack/internal/progress"
	"github.com/zulandar/accreditrack/internal/snapshot"
	"github.com/zulandar/accreditrack/internal/status"
	"github.com/zulandar/accreditrack/internal/task"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, a *api) {
	r := router.Group("/api")

	r.GET("/report", a.handleReport)
	r.GET("/plan", a.handlePlan)

	r.GET("/tasks", a.handleTaskList)
	r.GET("/tasks/:id", a.handleTaskDetail)
	r.PATCH("/tasks/:id", a.handleTaskUpdate)
	r.GET("/available-tasks", a.handleAvailable)

	r.POST("/groups", a.handleGroupCreate)
	r.GET("/groups/:id", a.handleGroupDetail)
	r.PATCH("/groups/:id", a.handleGroupUpdate)
	r.DELETE("/groups/:id", a.handleGroupDelete)
	r.GET("/groups/:id/tasks", a.handleGroupTasks)
	r.POST("/groups/:id/tasks/:taskID", a.handleLink)
	r.DELETE("/groups/:id/tasks/:taskID", a.handleUnlink)

	r.GET("/snapshots", a.handleSnapshots)
	r.GET("/export.xlsx", a.handleExport)
	r.GET("/events", a.handleEvents)
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func (a *api) handleReport(c *gin.Context) {
	b, err := a.board()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":           a.title,
		"generated_at":    b.GeneratedAt,
		"report_progress": b.ReportProgress,
		"sections":        b.Sections,
		"counts":          b.Counts,
	})
}

func (a *api) handlePlan(c *gin.Context) {
	b, err := a.board()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"generated_at": b.GeneratedAt,
		"plan":         b.Plan,
		"groups":       b.Groups,
	})
}

func (a *api) handleTaskList(c *gin.Context) {
	bucket, err := status.ParseBucket(c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	filters := task.ListFilters{
		SectionID: c.Query("section_id"),
		OwnerID:   c.Query("owner_id"),
		Bucket:    bucket,
	}
	if v := c.Query("blocked"); v != "" {
		blocked, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid blocked value %q", v)})
			return
		}
		filters.Blocked = &blocked
	}

	rows, err := task.List(a.db, filters)
	if err != nil {
		fail(c, err)
		return
	}
	views, err := a.taskViews(rows)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (a *api) handleTaskDetail(c *gin.Context) {
	v, err := a.taskView(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (a *api) handleTaskUpdate(c *gin.Context) {
	var patch task.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if _, err := task.Update(a.db, c.Param("id"), patch); err != nil {
		fail(c, err)
		return
	}
	v, err := a.taskView(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (a *api) handleAvailable(c *gin.Context) {
	bucket, err := status.ParseBucket(c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	tasks, err := link.Available(a.db, link.Filter{
		Search:    c.Query("search"),
		Bucket:    bucket,
		SectionID: c.Query("section_id"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (a *api) handleGroupCreate(c *gin.Context) {
	var opts group.CreateOpts
	if err := c.ShouldBindJSON(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	g, err := group.Create(a.db, opts)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, domain.GroupFromRow(*g))
}

func (a *api) handleGroupDetail(c *gin.Context) {
	g, err := group.Get(a.db, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	links, err := link.Links(a.db)
	if err != nil {
		fail(c, err)
		return
	}
	tasks, err := link.TasksOf(a.db, g.ID)
	if err != nil {
		fail(c, err)
		return
	}
	item := domain.GroupFromRow(*g)
	st := progress.ComputeGroupStats(item, links, tasks)
	c.JSON(http.StatusOK, progress.GroupCard{
		Group: item,
		Stats: st,
		Tier:  status.ClassifyProgress(st.Progress, false).String(),
	})
}

func (a *api) handleGroupUpdate(c *gin.Context) {
	var opts group.UpdateOpts
	if err := c.ShouldBindJSON(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	g, err := group.Update(a.db, c.Param("id"), opts)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.GroupFromRow(*g))
}

func (a *api) handleGroupDelete(c *gin.Context) {
	if err := group.Delete(a.db, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *api) handleGroupTasks(c *gin.Context) {
	if _, err := group.Get(a.db, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	tasks, err := link.TasksOf(a.db, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (a *api) handleLink(c *gin.Context) {
	if err := link.Link(a.db, c.Param("id"), c.Param("taskID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *api) handleUnlink(c *gin.Context) {
	if err := link.Unlink(a.db, c.Param("id"), c.Param("taskID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *api) handleSnapshots(c *gin.Context) {
	limit := 30
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit %q", v)})
			return
		}
		limit = n
	}
	snaps, err := snapshot.List(a.db, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snaps)
}

func (a *api) handleExport(c *gin.Context) {
	b, err := a.board()
	if err != nil {
		fail(c, err)
		return
	}
	data, err := renderWorkbook(b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	fileName := fmt.Sprintf("accreditation_%s.xlsx", b.GeneratedAt.Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
