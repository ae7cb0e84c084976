package web

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/billexact/billexact/internal/compliance"
	"github.com/billexact/billexact/internal/ingest"
	"github.com/billexact/billexact/internal/ledes"
	"github.com/billexact/billexact/internal/logging"
	"github.com/billexact/billexact/internal/model"
	"github.com/billexact/billexact/internal/storage"
	"github.com/billexact/billexact/internal/timecalc"
)

// entriesForRange resolves the shared from/to/client/matter/timekeeper query
// parameters. An absent range means "everything".
func (s *Server) entriesForRange(c *gin.Context) ([]model.TimeEntry, bool) {
	filter := storage.EntryFilter{
		ClientID:       c.Query("client"),
		ClientMatterID: c.Query("matter"),
		TimekeeperID:   c.Query("timekeeper"),
	}

	fromStr, toStr := c.Query("from"), c.Query("to")
	if fromStr == "" && toStr == "" && filter == (storage.EntryFilter{}) {
		entries, err := s.store.AllEntries()
		if err != nil {
			logging.LogError(s.log, "web", "entriesForRange", "all entries", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return nil, false
		}
		return entries, true
	}

	from := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	var err error
	if fromStr != "" {
		if from, err = timecalc.ParseDate(fromStr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
	}
	if toStr != "" {
		if to, err = timecalc.ParseDate(toStr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
	}

	entries, err := s.store.EntriesBetween(from, to, filter)
	if err != nil {
		logging.LogError(s.log, "web", "entriesForRange", "entries between", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return entries, true
}

func (s *Server) handleDashboard(c *gin.Context) {
	entries, ok := s.entriesForRange(c)
	if !ok {
		return
	}

	var totalHours float64
	for _, e := range entries {
		totalHours += e.DurationHours
	}

	issues := compliance.RunFile(entries, s.cfg.RulesPath)
	bySeverity := map[compliance.Severity]int{}
	for _, is := range issues {
		bySeverity[is.Severity]++
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":            len(entries),
		"total_hours":        totalHours,
		"issues":             issues,
		"issues_by_severity": bySeverity,
	})
}

func (s *Server) handleEntries(c *gin.Context) {
	entries, ok := s.entriesForRange(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleIssues(c *gin.Context) {
	entries, ok := s.entriesForRange(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, compliance.RunFile(entries, s.cfg.RulesPath))
}

type categorizeRequest struct {
	Description string `json:"description" binding:"required"`
}

func (s *Server) handleCategorize(c *gin.Context) {
	var req categorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description is required"})
		return
	}
	c.JSON(http.StatusOK, s.cat.Categorize(req.Description))
}

type ingestRequest struct {
	Since        string `json:"since" binding:"required"`
	Until        string `json:"until" binding:"required"`
	ClientID     string `json:"client_id"`
	MatterID     string `json:"matter_id"`
	TimekeeperID string `json:"timekeeper_id"`
}

func (s *Server) handleIngest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "since and until are required (YYYY-MM-DD)"})
		return
	}
	since, err := timecalc.ParseDate(req.Since)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	until, err := timecalc.ParseDate(req.Until)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	src := ingest.NewClient(s.cfg.ActivityWatch.URL)
	res, err := s.ingestor.Ingest(c.Request.Context(), src, since, timecalc.EndOfDay(until), ingest.Options{
		ClientID:     req.ClientID,
		MatterID:     req.MatterID,
		TimekeeperID: req.TimekeeperID,
	})
	if err != nil {
		logging.LogError(s.log, "web", "handleIngest", "ingest run", req, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"fetched":  res.Fetched,
		"inserted": res.Inserted,
		"skipped":  res.Skipped,
	})
}

type exportRequest struct {
	From          string `json:"from" binding:"required"`
	To            string `json:"to" binding:"required"`
	MatterID      string `json:"matter_id" binding:"required"`
	InvoiceNumber string `json:"invoice_number"`
	Description   string `json:"description"`
}

func (s *Server) handleExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from, to and matter_id are required"})
		return
	}
	from, err := timecalc.ParseDate(req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := timecalc.ParseDate(req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	matter, err := s.store.Matter(req.MatterID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	entries, err := s.store.EntriesBetween(from, to, storage.EntryFilter{ClientMatterID: req.MatterID})
	if err != nil {
		logging.LogError(s.log, "web", "handleExport", "entries between", req, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if len(entries) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no entries in range"})
		return
	}
	timekeepers, err := s.store.Timekeepers()
	if err != nil {
		logging.LogError(s.log, "web", "handleExport", "timekeepers", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	number := req.InvoiceNumber
	if number == "" {
		number = timecalc.InvoiceNumber(time.Now())
	}
	inv := ledes.Invoice{
		Number:      number,
		Description: req.Description,
		Start:       from,
		End:         to,
		Matter:      matter,
	}
	lines, err := ledes.BuildLines(inv, entries, timekeepers)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := ledes.Write(&buf, lines); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": strings.TrimSpace(err.Error())})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+number+".txt")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}
