package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"mockchat/internal/app"
	"mockchat/internal/model"
	"mockchat/internal/repository"
	"mockchat/internal/transport/http/middleware"
)

type reporterStub struct {
	from, to    time.Time
	trainerName string
	rows        []repository.ReportRow
}

func (s *reporterStub) Report(from, to time.Time, trainerName string) ([]repository.ReportRow, error) {
	s.from = from
	s.to = to
	s.trainerName = trainerName
	return s.rows, nil
}

func newReportContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	c.Set(middleware.ContextUsernameKey, "Alice")
	c.Set(middleware.ContextRoleKey, model.RoleTrainer)
	return c, recorder
}

func TestGenerateDefaultsToThirtyDayWindow(t *testing.T) {
	reporter := &reporterStub{}
	h := NewReportHandler(app.NewReportService(reporter))

	c, recorder := newReportContext(t, "/api/v1/reports")
	h.Generate(c)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.WithinDuration(t, time.Now(), reporter.to, 5*time.Second)
	require.Equal(t, 30*24*time.Hour, reporter.to.Sub(reporter.from))
	require.Equal(t, "Alice", reporter.trainerName)
}

func TestGenerateWritesCSVAttachment(t *testing.T) {
	start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	reporter := &reporterStub{rows: []repository.ReportRow{
		{TrainerName: "Alice", AssociateName: "Bob", StartTime: start, DurationSeconds: 60, MessageCount: 2},
	}}
	h := NewReportHandler(app.NewReportService(reporter))

	c, recorder := newReportContext(t, "/api/v1/reports?from=2026-08-01&to=2026-08-02")
	h.Generate(c)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "text/csv", recorder.Header().Get("Content-Type"))
	require.Contains(t, recorder.Header().Get("Content-Disposition"), "chat-report-20260801-20260802.csv")
	require.Contains(t, recorder.Body.String(), "Trainer,Agent,Start Time,End Time,Duration (seconds),Message Count")
	require.Contains(t, recorder.Body.String(), "Alice,Bob,2026-08-01 09:00:00,,60,2")

	// A bare to date covers that whole day.
	require.Equal(t, time.Date(2026, 8, 2, 23, 59, 59, 0, time.UTC), reporter.to)
}

func TestGenerateRejectsBadDates(t *testing.T) {
	h := NewReportHandler(app.NewReportService(&reporterStub{}))

	c, recorder := newReportContext(t, "/api/v1/reports?from=yesterday")
	h.Generate(c)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	c, recorder = newReportContext(t, "/api/v1/reports?to=later")
	h.Generate(c)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}
