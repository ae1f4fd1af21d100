package handler

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/scheduler"
	"github.com/sitestock/backend/internal/interfaces/http/dto"
)

// Pinger checks a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// JobRunner exposes the background scheduler
type JobRunner interface {
	States() []scheduler.JobState
	RunNow(name string) error
}

// SystemHandler serves health, build info and background job control
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	jobs      JobRunner
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. jobs may be nil when the
// scheduler is disabled.
func NewSystemHandler(name, version string, db Pinger, jobs JobRunner) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		jobs:      jobs,
		startTime: time.Now(),
	}
}

// SystemInfoResponse describes the running process
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	Uptime    string `json:"uptime"`
}

// Health reports 200 when the database answers, 503 otherwise
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "up", http.StatusOK
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			status, code = "down", http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{
		"status":    statusWord(code),
		"database":  status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func statusWord(code int) string {
	if code == http.StatusOK {
		return "healthy"
	}
	return "unhealthy"
}

// Info returns build and uptime information
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, "System info", SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Jobs lists background jobs and their last outcome
func (h *SystemHandler) Jobs(c *gin.Context) {
	if h.jobs == nil {
		h.Success(c, "Scheduler disabled", []scheduler.JobState{})
		return
	}
	h.Success(c, "Jobs retrieved", h.jobs.States())
}

// RunJob runs a background job now and waits for it
func (h *SystemHandler) RunJob(c *gin.Context) {
	if h.jobs == nil {
		h.HandleError(c, shared.NewDomainError(shared.CodeInvalidState, "scheduler is disabled"))
		return
	}
	name := c.Param("name")
	err := h.jobs.RunNow(name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		h.HandleError(c, shared.NewNotFoundError("job", name))
	case errors.Is(err, scheduler.ErrJobRunning):
		h.Error(c, http.StatusConflict, dto.ErrCodeConcurrencyConflict, "job "+name+" is already running")
	case err != nil:
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "job "+name+" failed: "+err.Error())
	default:
		h.Success(c, "Job completed", gin.H{"name": name})
	}
}
