// Package main provides the campusplan server entry point.
package main

import (
	goerrors "errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jheinrich-dev/campusplan/internal/config"
	"github.com/jheinrich-dev/campusplan/internal/errors"
	"github.com/jheinrich-dev/campusplan/internal/logger"
	"github.com/jheinrich-dev/campusplan/internal/timetable"
	"github.com/jheinrich-dev/campusplan/internal/validate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// api bundles the HTTP handlers of the timetable endpoints.
type api struct {
	timetables *timetable.Service
	log        *logger.Logger
}

func newAPI(timetables *timetable.Service, log *logger.Logger) *api {
	return &api{timetables: timetables, log: log.WithModule("api")}
}

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, a *api, registry *prometheus.Registry, cfg *config.Config) {
	// Health check endpoints
	// Liveness Probe - only checks that the process is running
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness Probe - checks the data directory and reports group counts
	readyHandler := func(c *gin.Context) {
		if _, err := os.Stat(cfg.DataDir); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "data directory not accessible",
			})
			return
		}

		groups, err := a.timetables.SeminarGroupIDs()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "timetable store not readable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"groups": len(groups),
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Timetable API
	apiGroup := router.Group("/api")
	apiGroup.GET("/groups", a.getGroups)
	apiGroup.GET("/modules", a.getModules)
	apiGroup.GET("/modules/info", a.getModuleInfo)
	apiGroup.GET("/timetable", a.getTimetable)
	apiGroup.POST("/timetable", a.postTimetable)
	apiGroup.GET("/timer", a.getTimer)

	// Prometheus metrics endpoint
	router.GET("/metrics",
		metricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func (a *api) internalError(c *gin.Context, err error) {
	// Storage details (paths, wrapped causes) stay in the logs.
	a.log.WithError(err).WithRequestID(c.GetString("request_id")).Error("Request failed")
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// splitFilter splits a comma-joined filter parameter into its keys.
func splitFilter(param string) []string {
	if param == "" {
		return nil
	}
	return strings.Split(param, ",")
}

func (a *api) getGroups(c *gin.Context) {
	groups, err := a.timetables.SeminarGroupIDs()
	if err != nil {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (a *api) getModules(c *gin.Context) {
	seminarGroupID := c.Query("seminarGroupId")
	if !validate.SeminarGroupID(seminarGroupID) {
		badRequest(c, "invalid seminarGroupId")
		return
	}

	modules, err := a.timetables.Modules(c.Request.Context(), seminarGroupID)
	if err != nil {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, modules)
}

func (a *api) getModuleInfo(c *gin.Context) {
	seminarGroupID := c.Query("seminarGroupId")
	moduleCode := c.Query("moduleCode")
	group := c.Query("group")

	if !validate.SeminarGroupID(seminarGroupID) {
		badRequest(c, "invalid seminarGroupId")
		return
	}
	if !validate.ModuleCode(moduleCode) {
		badRequest(c, "invalid moduleCode")
		return
	}

	hasGroups, err := a.timetables.HasGroups(c.Request.Context(), seminarGroupID, moduleCode)
	if err != nil {
		a.internalError(c, err)
		return
	}
	if hasGroups && !validate.GroupName(group) {
		badRequest(c, "invalid group")
		return
	}

	blocks, err := a.timetables.ModuleInfo(c.Request.Context(), seminarGroupID, moduleCode, group)
	if err != nil {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, blocks)
}

func (a *api) getTimetable(c *gin.Context) {
	seminarGroupID := c.Query("seminarGroupId")
	if !validate.SeminarGroupID(seminarGroupID) {
		badRequest(c, "invalid seminarGroupId")
		return
	}
	ignored := splitFilter(c.Query("ignore"))
	showed := splitFilter(c.Query("show"))

	ics, err := a.timetables.RenderCalendar(c.Request.Context(), seminarGroupID, ignored, showed)
	if err != nil {
		if goerrors.Is(err, errors.ErrConflictingFilters) {
			badRequest(c, err.Error())
			return
		}
		a.internalError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="timetable.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

func (a *api) postTimetable(c *gin.Context) {
	studentID := c.Query("studentId")
	seminarGroupID := c.Query("seminarGroupId")

	if !validate.StudentID(studentID) {
		badRequest(c, "invalid studentId")
		return
	}
	if !validate.SeminarGroupID(seminarGroupID) {
		badRequest(c, "invalid seminarGroupId")
		return
	}

	var tt timetable.Timetable
	if err := c.ShouldBindJSON(&tt); err != nil {
		badRequest(c, "invalid timetable body")
		return
	}

	if err := a.timetables.ImportTimetable(tt, studentID, seminarGroupID); err != nil {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (a *api) getTimer(c *gin.Context) {
	seminarGroupID := c.Query("seminarGroupId")
	if !validate.SeminarGroupID(seminarGroupID) {
		badRequest(c, "invalid seminarGroupId")
		return
	}
	ignored := splitFilter(c.Query("ignore"))
	showed := splitFilter(c.Query("show"))

	blocks, err := a.timetables.TodayBlocks(c.Request.Context(), seminarGroupID, ignored, showed)
	if err != nil {
		if goerrors.Is(err, errors.ErrConflictingFilters) {
			badRequest(c, err.Error())
			return
		}
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, blocks)
}
