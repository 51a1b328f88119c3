package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mockchat/internal/model"
	"mockchat/internal/repository"
)

type reporterMock struct {
	lastTrainer string
	rows        []repository.ReportRow
}

func (m *reporterMock) Report(from, to time.Time, trainerName string) ([]repository.ReportRow, error) {
	m.lastTrainer = trainerName
	return m.rows, nil
}

func TestGenerateScopesByRole(t *testing.T) {
	reporter := &reporterMock{}
	s := NewReportService(reporter)
	from := time.Now().Add(-24 * time.Hour)
	to := time.Now()

	_, err := s.Generate(from, to, "Alice", model.RoleTrainer)
	require.NoError(t, err)
	require.Equal(t, "Alice", reporter.lastTrainer)

	_, err = s.Generate(from, to, "Root", model.RoleAdmin)
	require.NoError(t, err)
	require.Empty(t, reporter.lastTrainer)
}

func TestGenerateRejectsInvertedRange(t *testing.T) {
	s := NewReportService(&reporterMock{})
	now := time.Now()

	_, err := s.Generate(now, now.Add(-time.Hour), "Alice", model.RoleTrainer)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestWriteCSV(t *testing.T) {
	start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	rows := []repository.ReportRow{
		{
			TrainerName:     "Alice",
			AssociateName:   "Bob",
			StartTime:       start,
			EndTime:         &end,
			DurationSeconds: 1800,
			MessageCount:    12,
		},
		{
			TrainerName:     "Alice",
			AssociateName:   "Carol",
			StartTime:       start,
			DurationSeconds: 60,
			MessageCount:    1,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	out := buf.String()
	require.Contains(t, out, "Trainer,Agent,Start Time,End Time,Duration (seconds),Message Count")
	require.Contains(t, out, "Alice,Bob,2026-08-01 09:00:00,2026-08-01 09:30:00,1800,12")
	require.Contains(t, out, "Alice,Carol,2026-08-01 09:00:00,,60,1")
}
