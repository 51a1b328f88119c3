package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mockchat/internal/app"
	"mockchat/internal/transport/http/middleware"
	"mockchat/internal/transport/http/response"
)

type ReportHandler struct {
	reportService *app.ReportService
}

func NewReportHandler(reportService *app.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// defaultReportWindow is used when the caller gives no from date.
const defaultReportWindow = 30 * 24 * time.Hour

// Generate streams an activity report as a CSV attachment. Admins get all
// trainers; trainers only their own conversations. An omitted to defaults to
// now, an omitted from to thirty days before to.
func (h *ReportHandler) Generate(c *gin.Context) {
	to := time.Now()
	if raw := c.Query("to"); raw != "" {
		parsed, err := parseReportTime(raw, true)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid to date")
			return
		}
		to = parsed
	}

	from := to.Add(-defaultReportWindow)
	if raw := c.Query("from"); raw != "" {
		parsed, err := parseReportTime(raw, false)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid from date")
			return
		}
		from = parsed
	}

	viewerName := c.GetString(middleware.ContextUsernameKey)
	viewerRole := c.GetString(middleware.ContextRoleKey)

	rows, err := h.reportService.Generate(from, to, viewerName, viewerRole)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "generate report failed")
		}
		return
	}

	if len(rows) == 0 {
		response.OK(c, gin.H{"message": "no conversations in range", "rows": 0})
		return
	}

	var buf bytes.Buffer
	if err := app.WriteCSV(&buf, rows); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "render report failed")
		return
	}

	filename := fmt.Sprintf("chat-report-%s-%s.csv", from.Format("20060102"), to.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// parseReportTime accepts a plain date or a full RFC 3339 timestamp. A bare
// "to" date is pushed to end of day so the range is inclusive.
func parseReportTime(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Second)
		}
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
