package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/report"
	"github.com/danielpatrickdp/valuesnet/internal/snapshot"
	"github.com/danielpatrickdp/valuesnet/internal/validation"
	"github.com/danielpatrickdp/valuesnet/internal/warnstate"
)

// #region types

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ValidateRequest carries an ad hoc network and the caller's warning state.
type ValidateRequest struct {
	Network      network.Network         `json:"network"`
	WarningState validation.WarningState `json:"warningState"`
}

// SnoozeRequest sets an explicit snooze end. A missing Until uses the configured duration.
type SnoozeRequest struct {
	Until *time.Time `json:"until"`
}

// ImportResponse reports the committed version.
type ImportResponse struct {
	Record  snapshot.Record `json:"record"`
	Created bool            `json:"created"`
}

// SnoozeResponse reports the effective snooze end.
type SnoozeResponse struct {
	NodeID string    `json:"nodeId"`
	Until  time.Time `json:"until"`
}

// #endregion types

func registerRoutes(rg *gin.RouterGroup, s *Server) {
	rg.POST("/network", s.handleImport)
	rg.GET("/network", s.handleCurrent)
	rg.GET("/history", s.handleHistory)
	rg.POST("/rollback/:versionId", s.handleRollback)
	rg.GET("/runs", s.handleRuns)

	rg.POST("/analyze", s.handleAnalyzeNetwork)
	rg.POST("/validate", s.handleValidateNetwork)
	rg.GET("/analysis", s.handleAnalysis)
	rg.GET("/report", s.handleReport)

	warnings := rg.Group("/warnings")
	{
		warnings.GET("", s.handleWarnings)
		warnings.GET("/state", s.handleWarningState)
		warnings.POST("/:nodeId/snooze", s.handleSnooze)
		warnings.DELETE("/:nodeId/snooze", s.handleUnsnooze)
		warnings.POST("/:nodeId/dismiss", s.handleDismiss)
		warnings.POST("/:nodeId/undismiss", s.handleUndismiss)
	}
}

// #region network

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleImport(c *gin.Context) {
	var n network.Network
	if err := c.ShouldBindJSON(&n); err != nil {
		badRequest(c, err)
		return
	}
	rec, created, err := s.svc.Import(c.Request.Context(), n, c.Query("note"))
	if err != nil {
		s.fail(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, ImportResponse{Record: rec, Created: created})
}

func (s *Server) handleCurrent(c *gin.Context) {
	rec, err := s.svc.Current(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleHistory(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return
	}
	out, err := s.svc.History(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleRollback(c *gin.Context) {
	if err := s.svc.Rollback(c.Request.Context(), c.Param("versionId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRuns(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return
	}
	out, err := s.svc.Runs(c.Request.Context(), c.Query("version"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// #endregion network

// #region analysis

func (s *Server) handleAnalyzeNetwork(c *gin.Context) {
	var n network.Network
	if err := c.ShouldBindJSON(&n); err != nil {
		badRequest(c, err)
		return
	}
	r, err := s.svc.AnalyzeNetwork(c.Request.Context(), n)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) handleValidateNetwork(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := s.svc.ValidateNetwork(c.Request.Context(), req.Network, req.WarningState)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) handleAnalysis(c *gin.Context) {
	run, err := s.svc.Analyze(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// handleReport renders Markdown unless format=json is given.
func (s *Server) handleReport(c *gin.Context) {
	in, err := s.svc.Report(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, report.BuildSummary(in))
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(in)))
}

// #endregion analysis

// #region warnings

func (s *Server) handleWarnings(c *gin.Context) {
	status := validation.Status(c.Query("status"))
	switch status {
	case "", validation.StatusActive, validation.StatusSnoozed, validation.StatusDismissed:
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown status " + string(status), Code: "bad_request"})
		return
	}
	out, err := s.svc.Warnings(c.Request.Context(), status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleWarningState(c *gin.Context) {
	ws, err := s.svc.WarningState(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (s *Server) handleSnooze(c *gin.Context) {
	var req SnoozeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	var until time.Time
	if req.Until != nil {
		until = *req.Until
	}
	nodeID := c.Param("nodeId")
	end, err := s.svc.Snooze(c.Request.Context(), nodeID, until)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SnoozeResponse{NodeID: nodeID, Until: end})
}

func (s *Server) handleUnsnooze(c *gin.Context) {
	if err := s.svc.Unsnooze(c.Request.Context(), c.Param("nodeId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDismiss(c *gin.Context) {
	if err := s.svc.Dismiss(c.Request.Context(), c.Param("nodeId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUndismiss(c *gin.Context) {
	if err := s.svc.Undismiss(c.Request.Context(), c.Param("nodeId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// #endregion warnings

// #region helpers

// fail maps service errors onto HTTP statuses. An inconsistent analysis is a server fault.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, network.ErrInvalidNetwork), errors.Is(err, warnstate.ErrEmptyNodeID):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid"})
	case errors.Is(err, snapshot.ErrNoCurrent), errors.Is(err, snapshot.ErrVersionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	default:
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "internal"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "bad_request"})
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, err)
		return 0, false
	}
	return v, true
}

// #endregion helpers
